// Package memory provides a process-local UserRepository with the same
// uniqueness guarantees as the postgres store. It backs STORE_DRIVER=memory
// and the service tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/linkbio/internal/domain/entity"
	"github.com/oksasatya/linkbio/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*entity.User
	byEmail map[string]string
	bySlug  map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*entity.User),
		byEmail: make(map[string]string),
		bySlug:  make(map[string]string),
	}
}

// clone deep-copies through JSON so callers never share the stored document.
func clone(u *entity.User) *entity.User {
	b, _ := json.Marshal(u)
	out := &entity.User{}
	_ = json.Unmarshal(b, out)
	out.Password = u.Password
	return out
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := entity.NormalizeEmail(u.Email)
	if _, ok := r.byEmail[email]; ok {
		return repository.ErrEmailTaken
	}
	if err := r.checkSlugs(u); err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.users[u.ID] = clone(u)
	r.byEmail[email] = u.ID
	for _, s := range u.Slugs() {
		r.bySlug[s] = u.ID
	}
	return nil
}

// checkSlugs rejects slugs owned by another user or repeated within u.
func (r *UserRepository) checkSlugs(u *entity.User) error {
	seen := make(map[string]struct{}, len(u.Profiles))
	for _, s := range u.Slugs() {
		if owner, ok := r.bySlug[s]; ok && owner != u.ID {
			return repository.ErrSlugTaken
		}
		if _, dup := seen[s]; dup {
			return repository.ErrSlugTaken
		}
		seen[s] = struct{}{}
	}
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(r.users[id]), nil
}

func (r *UserRepository) GetBySlug(_ context.Context, slug string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(r.users[id]), nil
}

func (r *UserRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySlug[slug]
	return ok, nil
}

func (r *UserRepository) Replace(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.checkSlugs(u); err != nil {
		return err
	}
	for _, s := range prev.Slugs() {
		delete(r.bySlug, s)
	}
	u.UpdatedAt = time.Now().UTC()
	stored := clone(u)
	stored.Email = prev.Email
	stored.CreatedAt = prev.CreatedAt
	r.users[u.ID] = stored
	for _, s := range u.Slugs() {
		r.bySlug[s] = u.ID
	}
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, s := range u.Slugs() {
		delete(r.bySlug, s)
	}
	delete(r.byEmail, entity.NormalizeEmail(u.Email))
	delete(r.users, id)
	return nil
}

func matches(p entity.Profile, search string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), s) || strings.Contains(strings.ToLower(p.About), s)
}

// ListPublic flattens profiles in user creation order, then profile order.
func (r *UserRepository) ListPublic(_ context.Context, q repository.PublicQuery) ([]repository.PublicProfileRow, int, error) {
	r.mu.RLock()
	users := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, clone(u))
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	var all []repository.PublicProfileRow
	for _, u := range users {
		for _, p := range u.Profiles {
			if matches(p, q.Search) {
				all = append(all, repository.PublicProfileRow{UserID: u.ID, Profile: p})
			}
		}
	}
	total := len(all)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return all[start:end], total, nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }

var _ repository.UserRepository = (*UserRepository)(nil)
