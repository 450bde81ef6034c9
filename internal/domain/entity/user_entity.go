package entity

import (
	"strings"
	"time"
)

// MaxProfiles is the upper bound on profiles owned by a single user.
const MaxProfiles = 5

// User is the aggregate root for the account domain.
// Profiles are embedded and only ever mutated through the owning user,
// so a User is always read and written as a whole.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	Profiles      []Profile `json:"profiles"`
	ActiveProfile int       `json:"activeProfile"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NormalizeEmail lower-cases and trims an email address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanAddProfile reports whether another profile fits under MaxProfiles.
func (u *User) CanAddProfile() bool {
	return len(u.Profiles) < MaxProfiles
}

// ProfileIndex returns the position of the profile with the given id, or -1.
func (u *User) ProfileIndex(profileID string) int {
	for i := range u.Profiles {
		if u.Profiles[i].ID == profileID {
			return i
		}
	}
	return -1
}

// Active returns the active profile, or nil when the pointer is out of range.
func (u *User) Active() *Profile {
	if u.ActiveProfile < 0 || u.ActiveProfile >= len(u.Profiles) {
		return nil
	}
	return &u.Profiles[u.ActiveProfile]
}

// Slugs lists every slug owned by the user, in profile order.
func (u *User) Slugs() []string {
	out := make([]string, 0, len(u.Profiles))
	for _, p := range u.Profiles {
		out = append(out, p.URLSlug)
	}
	return out
}

// ProfileBySlug returns the profile carrying slug, or nil.
func (u *User) ProfileBySlug(slug string) *Profile {
	for i := range u.Profiles {
		if u.Profiles[i].URLSlug == slug {
			return &u.Profiles[i]
		}
	}
	return nil
}

// Valid checks the collection invariants:
// 0 <= len(Profiles) <= MaxProfiles and 0 <= ActiveProfile < max(len(Profiles), 1).
func (u *User) Valid() bool {
	n := len(u.Profiles)
	if n > MaxProfiles {
		return false
	}
	upper := n
	if upper < 1 {
		upper = 1
	}
	return u.ActiveProfile >= 0 && u.ActiveProfile < upper
}
