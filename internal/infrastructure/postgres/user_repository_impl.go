package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/linkbio/internal/domain/entity"
	"github.com/oksasatya/linkbio/internal/domain/repository"
)

// UserRepository stores each user as one row with its profiles embedded as
// a JSONB document. profile_slugs mirrors the embedded slugs so the database
// can enforce global uniqueness with a plain unique constraint.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `u.id, u.email, u.password_hash, u.profiles, u.active_profile, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var doc []byte
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &doc, &u.ActiveProfile, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal(doc, &u.Profiles); err != nil {
		return nil, fmt.Errorf("decode profiles of user %s: %w", u.ID, err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	doc, err := json.Marshal(u.Profiles)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, profiles, active_profile, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, u.ID, u.Email, u.Password, doc, u.ActiveProfile, u.CreatedAt, u.UpdatedAt); err != nil {
			return mapError(err)
		}
		return insertSlugs(ctx, tx, u)
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, entity.NormalizeEmail(email)))
}

func (r *UserRepository) GetBySlug(ctx context.Context, slug string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN profile_slugs s ON s.user_id = u.id
		WHERE s.slug = $1
	`, slug))
}

func (r *UserRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profile_slugs WHERE slug = $1)`, slug).Scan(&exists)
	return exists, mapError(err)
}

// Replace overwrites the whole aggregate and rewrites its slug index rows in
// one transaction. Slugs dropped by the new document become free on commit.
func (r *UserRepository) Replace(ctx context.Context, u *entity.User) error {
	doc, err := json.Marshal(u.Profiles)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET password_hash = $1, profiles = $2, active_profile = $3, updated_at = $4
			WHERE id = $5
		`, u.Password, doc, u.ActiveProfile, u.UpdatedAt, u.ID)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM profile_slugs WHERE user_id = $1`, u.ID); err != nil {
			return mapError(err)
		}
		return insertSlugs(ctx, tx, u)
	})
}

func insertSlugs(ctx context.Context, tx pgx.Tx, u *entity.User) error {
	if len(u.Profiles) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, slug := range u.Slugs() {
		batch.Queue(`INSERT INTO profile_slugs (slug, user_id) VALUES ($1, $2)`, slug, u.ID)
	}
	br := tx.SendBatch(ctx, batch)
	for range u.Profiles {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapError(err)
		}
	}
	return mapError(br.Close())
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// publicFilter matches name or about case-insensitively; an empty search
// matches everything. strpos avoids having to escape LIKE wildcards.
const publicFilter = `
	FROM users u
	CROSS JOIN LATERAL jsonb_array_elements(u.profiles) WITH ORDINALITY AS p(doc, ord)
	WHERE $1 = ''
	   OR strpos(lower(coalesce(p.doc->>'name', '')), lower($1)) > 0
	   OR strpos(lower(coalesce(p.doc->>'about', '')), lower($1)) > 0
`

func (r *UserRepository) ListPublic(ctx context.Context, q repository.PublicQuery) ([]repository.PublicProfileRow, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) `+publicFilter, q.Search).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.id, p.doc `+publicFilter+`
		ORDER BY u.created_at, u.id, p.ord
		OFFSET $2 LIMIT $3
	`, q.Search, q.Offset, q.Limit)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	out := make([]repository.PublicProfileRow, 0, q.Limit)
	for rows.Next() {
		var (
			row repository.PublicProfileRow
			doc []byte
		)
		if err := rows.Scan(&row.UserID, &doc); err != nil {
			return nil, 0, mapError(err)
		}
		if err := json.Unmarshal(doc, &row.Profile); err != nil {
			return nil, 0, fmt.Errorf("decode profile of user %s: %w", row.UserID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return out, total, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var _ repository.UserRepository = (*UserRepository)(nil)
