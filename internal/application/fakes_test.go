package application_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	app "github.com/oksasatya/linkbio/internal/application"
	"github.com/oksasatya/linkbio/internal/domain/entity"
	"github.com/oksasatya/linkbio/internal/infrastructure/memory"
	"github.com/oksasatya/linkbio/pkg/helpers"
	"github.com/oksasatya/linkbio/pkg/mailer"
)

const testBaseURL = "https://links.test"

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(h, p string) bool     { return h == "hashed:"+p }

type fakeIssuer struct{}

func (fakeIssuer) GenerateAccessToken(userID string) (string, time.Time, error) {
	return "token-" + userID, time.Now().Add(time.Hour), nil
}

type fakeSessions struct {
	mu      sync.Mutex
	active  map[string]bool
	revoked []string
}

func newFakeSessions() *fakeSessions { return &fakeSessions{active: map[string]bool{}} }

func (s *fakeSessions) Start(_ context.Context, userID, _ string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[userID] = true
	return nil
}

func (s *fakeSessions) Revoke(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
	s.revoked = append(s.revoked, userID)
	return nil
}

func (s *fakeSessions) isActive(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[userID]
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]entity.Profile
	removed []string
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]entity.Profile{}} }

func (f *fakeIndex) IndexProfiles(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range u.Profiles {
		f.docs[p.ID] = p
	}
	return nil
}

func (f *fakeIndex) RemoveProfiles(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.docs, id)
	}
	f.removed = append(f.removed, ids...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q string, size int) ([]entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Profile
	for _, p := range f.docs {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) && len(out) < size {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := body.(mailer.EmailJob)
	if !ok {
		return fmt.Errorf("unexpected payload %T", body)
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *fakePublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template)
	}
	return out
}

type fakeAvatars struct {
	paths []string
	body  string
}

func (f *fakeAvatars) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	f.body = string(b)
	return "https://cdn.test/" + objectPath, nil
}

// racingRepo runs beforeWrite once, right before the first Create or Replace,
// to simulate a concurrent writer grabbing a slug after it was allocated.
type racingRepo struct {
	*memory.UserRepository
	beforeWrite func()
}

func (r *racingRepo) fire() {
	if h := r.beforeWrite; h != nil {
		r.beforeWrite = nil
		h()
	}
}

func (r *racingRepo) Create(ctx context.Context, u *entity.User) error {
	r.fire()
	return r.UserRepository.Create(ctx, u)
}

func (r *racingRepo) Replace(ctx context.Context, u *entity.User) error {
	r.fire()
	return r.UserRepository.Replace(ctx, u)
}

type fixture struct {
	repo     *memory.UserRepository
	sessions *fakeSessions
	index    *fakeIndex
	events   *fakePublisher
	deps     app.Deps
	accounts *app.AccountService
	profiles *app.ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     memory.NewUserRepository(),
		sessions: newFakeSessions(),
		index:    newFakeIndex(),
		events:   &fakePublisher{},
	}
	f.deps = app.Deps{
		Repo:     f.repo,
		Hasher:   plainHasher{},
		Tokens:   fakeIssuer{},
		Sessions: f.sessions,
		Index:    f.index,
		Events:   f.events,
		Logger:   helpers.NewDiscardLogger(),
		BaseURL:  testBaseURL,
	}
	f.accounts = app.NewAccountService(f.deps)
	f.profiles = app.NewProfileService(f.deps)
	return f
}

func (f *fixture) register(t *testing.T, email, name string) *app.RegisterResult {
	t.Helper()
	res, err := f.accounts.Register(context.Background(), app.RegisterInput{
		Email:    email,
		Password: "secret123",
		Profile:  app.ProfileFields{Name: name, About: "about " + name},
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) user(t *testing.T, id string) *entity.User {
	t.Helper()
	u, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
