package binder

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
)

// DefaultMaxMemory is the memory budget for parsing multipart forms; larger
// parts spill to temporary files.
const DefaultMaxMemory = 10 << 20

var fileHeaderType = reflect.TypeFor[*multipart.FileHeader]()

// Form binds application/x-www-form-urlencoded and multipart/form-data bodies.
// Fields tagged `form:"name"` receive values, fields tagged `file:"name"` of
// type *multipart.FileHeader receive the first uploaded file.
//
//	type ProfileForm struct {
//		Name  string                `form:"name"`
//		Image *multipart.FileHeader `file:"image"`
//	}
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return ErrMissingContentType
		}

		mediaType, params, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
		}

		switch mediaType {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			return bindToStruct(v, "form", r.PostForm, ErrInvalidForm)

		case "multipart/form-data":
			if params["boundary"] == "" {
				return fmt.Errorf("%w: missing boundary in content type", ErrInvalidForm)
			}
			if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			if err := bindToStruct(v, "form", r.MultipartForm.Value, ErrInvalidForm); err != nil {
				return err
			}
			return bindFiles(v, r.MultipartForm.File)

		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
		}
	}
}

func bindFiles(v any, files map[string][]*multipart.FileHeader) error {
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()

	for i := range rv.NumField() {
		field := rv.Field(i)
		name, skip := parseFieldTag(rt.Field(i), "file")
		if skip || !field.CanSet() {
			continue
		}
		if rt.Field(i).Type != fileHeaderType {
			return fmt.Errorf("%w: field %s: file fields must be *multipart.FileHeader", ErrInvalidForm, rt.Field(i).Name)
		}

		headers := files[name]
		if len(headers) == 0 || headers[0].Size == 0 {
			continue
		}
		headers[0].Filename = sanitizeFilename(headers[0].Filename)
		field.Set(reflect.ValueOf(headers[0]))
	}

	return nil
}

// sanitizeFilename strips directory components and null bytes.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}
