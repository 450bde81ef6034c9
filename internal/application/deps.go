package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/linkbio/internal/domain/entity"
	repo "github.com/oksasatya/linkbio/internal/domain/repository"
	"github.com/oksasatya/linkbio/pkg/mailer"
)

// maxSlugAttempts bounds how often a write is retried after the store
// rejects a slug that was free at allocation time.
const maxSlugAttempts = 5

// Deps carries the collaborators shared by the account and profile services.
// Sessions, Index, Events and Avatars are optional.
type Deps struct {
	Repo       repo.UserRepository
	Hasher     Hasher
	Tokens     CredentialIssuer
	Sessions   SessionStore
	Index      ProfileIndexer
	Events     EventPublisher
	Avatars    AvatarStorage
	Logger     *logrus.Logger
	BaseURL    string
	SessionTTL time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.SessionTTL <= 0 {
		d.SessionTTL = 24 * time.Hour
	}
	return d
}

// ProfileURL composes the public URL of a slug.
func ProfileURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/" + slug
}

// writeWithSlugRetry runs write and, when the store reports a slug conflict,
// re-allocates the slug of profile idx from name and tries again.
func writeWithSlugRetry(ctx context.Context, slugs *SlugAllocator, u *entity.User, idx int, name string, write func() error) error {
	for attempt := 1; ; attempt++ {
		err := write()
		if err == nil || !errors.Is(err, repo.ErrSlugTaken) || attempt >= maxSlugAttempts {
			return err
		}
		slug, aerr := slugs.Allocate(ctx, name)
		if aerr != nil {
			return aerr
		}
		u.Profiles[idx].URLSlug = slug
	}
}

// indexUser refreshes the search index; failures are logged only.
func (d Deps) indexUser(ctx context.Context, u *entity.User) {
	if d.Index == nil {
		return
	}
	if err := d.Index.IndexProfiles(ctx, u); err != nil {
		d.Logger.WithError(err).WithField("user_id", u.ID).Warn("profile index failed")
	}
}

func (d Deps) notify(ctx context.Context, job mailer.EmailJob) {
	if d.Events == nil {
		return
	}
	if err := d.Events.PublishJSON(ctx, job); err != nil {
		d.Logger.WithError(err).WithField("template", job.Template).Warn("failed to publish email job")
	}
}
