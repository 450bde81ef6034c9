package application

import (
	"context"
	"strconv"
	"strings"
)

// SlugLookup is the read side of the store needed to allocate slugs.
type SlugLookup interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// SlugAllocator derives URL slugs from display names. It only reads the
// store; the caller persists the slug together with the profile, and the
// store's unique constraint settles races between concurrent callers.
type SlugAllocator struct {
	lookup SlugLookup
}

func NewSlugAllocator(lookup SlugLookup) *SlugAllocator {
	return &SlugAllocator{lookup: lookup}
}

// Normalize lower-cases name and replaces every character outside [a-z0-9]
// with '-', one for one. Consecutive separators are kept.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('-')
	}
	return b.String()
}

// Allocate returns the first of base, base-1, base-2, ... not present in the
// store. There is no retry cap.
func (a *SlugAllocator) Allocate(ctx context.Context, name string) (string, error) {
	base := Normalize(name)
	slug := base
	for counter := 1; ; counter++ {
		exists, err := a.lookup.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(counter)
	}
}
