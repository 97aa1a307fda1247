package session

import "time"

// Role is the backend's user role.
type Role string

const (
	RoleSpeaker Role = "SPEAKER"
	RoleAdmin   Role = "ADMIN"
	RoleUser    Role = "USER"
)

// UserProfile is the authenticated principal as returned by the backend.
type UserProfile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Bio         string     `json:"bio"`
	ContactInfo *string    `json:"contactInfo"`
	PhotoURL    string     `json:"photoUrl"`
	Role        Role       `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

// Clone returns a deep copy. A nil receiver yields nil.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	if u.ContactInfo != nil {
		v := *u.ContactInfo
		c.ContactInfo = &v
	}
	if u.DeletedAt != nil {
		v := *u.DeletedAt
		c.DeletedAt = &v
	}
	return &c
}

// State is a point-in-time copy of a Store.
type State struct {
	Token string
	User  *UserProfile
	Error string
}

// IsAuthenticated reports whether both a token and a user are present.
// A token alone, for example one restored from storage whose user fetch
// failed, is not enough.
func (s State) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}
