package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/linkbio/internal/domain/repository"
)

const (
	uniqueViolationCode = "23505"

	emailConstraint = "users_email_key"
	slugConstraint  = "profile_slugs_slug_key"
)

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return fmt.Errorf("%w: %s", repository.ErrEmailTaken, pgErr.Detail)
		case slugConstraint:
			return fmt.Errorf("%w: %s", repository.ErrSlugTaken, pgErr.Detail)
		}
	}
	return err
}
