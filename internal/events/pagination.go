package events

import (
	"strconv"

	"github.com/dmitrymomot/speakerdesk/internal/backend"
)

// PageLink is one entry of the pager.
type PageLink struct {
	Label  string
	Page   int
	Active bool
	URL    string
}

// Pager is the pagination shown under the events list.
type Pager struct {
	Page     int
	LastPage int
	Total    int
	Prev     *PageLink
	Next     *PageLink
	Links    []PageLink
}

// PageURL returns the portal URL of events page n.
func PageURL(n int) string {
	return "/?page=" + strconv.Itoa(n)
}

// NewPager builds the pager from the backend pagination. Backend links are
// used when present; otherwise one link per page is generated.
func NewPager(p backend.Pagination) Pager {
	pager := Pager{Page: p.Page, LastPage: p.LastPage, Total: p.Total}
	if pager.Page < 1 {
		pager.Page = 1
	}

	for _, l := range p.Links {
		if l.Page < 1 {
			continue
		}
		pager.Links = append(pager.Links, PageLink{
			Label:  l.Label,
			Page:   l.Page,
			Active: l.Active || l.Page == pager.Page,
			URL:    PageURL(l.Page),
		})
	}
	if len(pager.Links) == 0 {
		for n := 1; n <= p.LastPage; n++ {
			pager.Links = append(pager.Links, PageLink{
				Label:  strconv.Itoa(n),
				Page:   n,
				Active: n == pager.Page,
				URL:    PageURL(n),
			})
		}
	}

	prev, next := p.Prev, p.Next
	if prev == nil && pager.Page > 1 {
		n := pager.Page - 1
		prev = &n
	}
	if next == nil && pager.Page < p.LastPage {
		n := pager.Page + 1
		next = &n
	}
	if prev != nil {
		pager.Prev = &PageLink{Label: "Previous", Page: *prev, URL: PageURL(*prev)}
	}
	if next != nil {
		pager.Next = &PageLink{Label: "Next", Page: *next, URL: PageURL(*next)}
	}

	return pager
}

// Show reports whether there is more than one page.
func (p Pager) Show() bool {
	return p.LastPage > 1
}
