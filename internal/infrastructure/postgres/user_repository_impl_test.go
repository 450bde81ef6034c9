package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/linkbio/internal/domain/entity"
	"github.com/oksasatya/linkbio/internal/domain/repository"
	"github.com/oksasatya/linkbio/internal/infrastructure/postgres"
)

// testDatabaseURL names a throwaway database; its tables are truncated by
// every test.
const testDatabaseURL = "TEST_DATABASE_URL"

func migrateUp(t *testing.T, dsn string) {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	require.NoError(t, err)
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err, "apply migrations")
	}
}

func newRepo(t *testing.T) *postgres.UserRepository {
	t.Helper()
	dsn := os.Getenv(testDatabaseURL)
	if dsn == "" {
		t.Skip(testDatabaseURL + " not set - skipping postgres integration test")
	}
	migrateUp(t, dsn)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE users CASCADE`)
	require.NoError(t, err)
	return postgres.NewUserRepository(pool)
}

// newUser builds a user whose profiles are named after their slugs.
func newUser(email string, createdAt time.Time, slugs ...string) *entity.User {
	u := &entity.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  "hash",
		Profiles:  []entity.Profile{},
		CreatedAt: createdAt,
	}
	for _, s := range slugs {
		u.Profiles = append(u.Profiles, entity.Profile{
			ID:      uuid.NewString(),
			Name:    s,
			URLSlug: s,
			Links:   []entity.Link{{Platform: "web", URL: "https://" + s + ".test"}},
		})
	}
	return u
}

func TestUserRepository_CreateAndLookups(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	u := newUser("a@x.io", time.Now(), "alice", "alice-work")
	u.Profiles[1].About = "consulting"
	require.NoError(t, repo.Create(ctx, u))

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
	assert.Equal(t, "hash", byID.Password)
	require.Len(t, byID.Profiles, 2)
	assert.Equal(t, "consulting", byID.Profiles[1].About)
	assert.Equal(t, u.Profiles[0].Links, byID.Profiles[0].Links)

	byEmail, err := repo.GetByEmail(ctx, " A@X.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	bySlug, err := repo.GetBySlug(ctx, "alice-work")
	require.NoError(t, err)
	assert.Equal(t, u.ID, bySlug.ID)

	exists, err := repo.SlugExists(ctx, "alice-work")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetBySlug(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newUser("a@x.io", time.Now(), "alice")))

	t.Run("slug owned by another user", func(t *testing.T) {
		err := repo.Create(ctx, newUser("b@x.io", time.Now(), "bob", "alice"))
		assert.ErrorIs(t, err, repository.ErrSlugTaken)

		_, err = repo.GetByEmail(ctx, "b@x.io")
		assert.ErrorIs(t, err, repository.ErrNotFound, "failed create leaves nothing behind")
		exists, err := repo.SlugExists(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, newUser("a@x.io", time.Now(), "other"))
		assert.ErrorIs(t, err, repository.ErrEmailTaken)
	})

	t.Run("replace onto a taken slug", func(t *testing.T) {
		b := newUser("b@x.io", time.Now(), "bob")
		require.NoError(t, repo.Create(ctx, b))
		b.Profiles[0].URLSlug = "alice"
		assert.ErrorIs(t, repo.Replace(ctx, b), repository.ErrSlugTaken)

		stored, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", stored.Profiles[0].URLSlug)
	})
}

func TestUserRepository_ReplaceFreesRenamedSlug(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	u := newUser("a@x.io", time.Now(), "alice")
	require.NoError(t, repo.Create(ctx, u))

	u.Profiles[0].Name = "Alicia"
	u.Profiles[0].URLSlug = "alicia"
	require.NoError(t, repo.Replace(ctx, u))

	exists, err := repo.SlugExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = repo.GetBySlug(ctx, "alicia")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, newUser("b@x.io", time.Now(), "alice")), "old slug is allocatable again")

	ghost := newUser("ghost@x.io", time.Now(), "ghost")
	assert.ErrorIs(t, repo.Replace(ctx, ghost), repository.ErrNotFound)
}

func TestUserRepository_DeleteCascadesSlugs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	u := newUser("a@x.io", time.Now(), "alice", "alice-work")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.Delete(ctx, u.ID))
	for _, slug := range []string{"alice", "alice-work"} {
		exists, err := repo.SlugExists(ctx, slug)
		require.NoError(t, err)
		assert.False(t, exists, slug)
	}
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), repository.ErrNotFound)
}

func TestUserRepository_ListPublic(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := newUser("a@x.io", base, "alice", "alice-work")
	a.Profiles[1].About = "100% Consulting_work"
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, newUser("b@x.io", base.Add(time.Minute), "bob")))
	require.NoError(t, repo.Create(ctx, newUser("c@x.io", base.Add(2*time.Minute), "carol")))

	t.Run("pages over flattened profiles", func(t *testing.T) {
		rows, total, err := repo.ListPublic(ctx, repository.PublicQuery{Offset: 0, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"alice", "alice-work", "bob"},
			[]string{rows[0].Profile.URLSlug, rows[1].Profile.URLSlug, rows[2].Profile.URLSlug})
		assert.Equal(t, a.ID, rows[1].UserID)

		rows, total, err = repo.ListPublic(ctx, repository.PublicQuery{Offset: 3, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "carol", rows[0].Profile.URLSlug)
	})

	t.Run("offset past the end", func(t *testing.T) {
		rows, total, err := repo.ListPublic(ctx, repository.PublicQuery{Offset: 1 << 40, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Empty(t, rows)
	})

	t.Run("search matches name or about case-insensitively", func(t *testing.T) {
		rows, total, err := repo.ListPublic(ctx, repository.PublicQuery{Search: "CAROL", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "carol", rows[0].Profile.URLSlug)

		rows, total, err = repo.ListPublic(ctx, repository.PublicQuery{Search: "consulting", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "alice-work", rows[0].Profile.URLSlug)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		_, total, err := repo.ListPublic(ctx, repository.PublicQuery{Search: "0% c", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = repo.ListPublic(ctx, repository.PublicQuery{Search: "_", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	require.NoError(t, repo.Ping(ctx))
}
