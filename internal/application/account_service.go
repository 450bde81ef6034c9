package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/linkbio/internal/domain/entity"
	repo "github.com/oksasatya/linkbio/internal/domain/repository"
	"github.com/oksasatya/linkbio/pkg/mailer"
	tpl "github.com/oksasatya/linkbio/pkg/mailer/templates"
)

// AccountService owns registration, credential checks and account deletion.
type AccountService struct {
	Deps
	slugs *SlugAllocator
}

func NewAccountService(d Deps) *AccountService {
	d = d.withDefaults()
	return &AccountService{Deps: d, slugs: NewSlugAllocator(d.Repo)}
}

// ProfileFields are the editable fields of a profile.
type ProfileFields struct {
	Name    string
	PhoneNo string
	About   string
	Links   []entity.Link
}

// trimmed strips surrounding whitespace from the name so it does not leak
// into the slug.
func (f ProfileFields) trimmed() ProfileFields {
	f.Name = strings.TrimSpace(f.Name)
	return f
}

type RegisterInput struct {
	Email    string
	Password string
	Profile  ProfileFields
}

type RegisterResult struct {
	UserID     string
	Token      string
	ProfileURL string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

func newProfile(f ProfileFields, slug string) entity.Profile {
	links := f.Links
	if links == nil {
		links = []entity.Link{}
	}
	return entity.Profile{
		ID:      uuid.NewString(),
		Name:    f.Name,
		PhoneNo: f.PhoneNo,
		About:   f.About,
		Links:   links,
		URLSlug: slug,
	}
}

// Register creates a user with a single profile and returns a signed token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := entity.NormalizeEmail(in.Email)
	in.Profile = in.Profile.trimmed()
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	slug, err := s.slugs.Allocate(ctx, in.Profile.Name)
	if err != nil {
		return nil, fmt.Errorf("allocate slug: %w", err)
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: hash,
		Profiles: []entity.Profile{newProfile(in.Profile, slug)},
	}
	err = writeWithSlugRetry(ctx, s.slugs, u, 0, in.Profile.Name, func() error {
		return s.Repo.Create(ctx, u)
	})
	if errors.Is(err, repo.ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("create user failed")
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, _, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}

	profileURL := ProfileURL(s.BaseURL, u.Profiles[0].URLSlug)
	s.indexUser(ctx, u)
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     tpl.NewWelcomeData(u.Profiles[0].Name, u.Email, profileURL, tpl.WithTime(time.Now())),
	})
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "slug": u.Profiles[0].URLSlug}).Info("user registered")

	return &RegisterResult{UserID: u.ID, Token: token, ProfileURL: profileURL}, nil
}

// Login verifies credentials. Unknown email and wrong password yield the
// same ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !s.Hasher.Compare(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp}, nil
}

// Logout revokes the user's session so outstanding tokens stop working.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	if s.Sessions == nil {
		return nil
	}
	return s.Sessions.Revoke(ctx, userID)
}

// DeleteAccount removes the account owned by callerID with the given email.
func (s *AccountService) DeleteAccount(ctx context.Context, callerID, email string) (string, error) {
	u, err := s.ownedAccount(ctx, callerID, email)
	if err != nil {
		return "", err
	}
	return s.delete(ctx, u)
}

// DeleteAccountWithPassword is DeleteAccount with a password confirmation.
func (s *AccountService) DeleteAccountWithPassword(ctx context.Context, callerID, email, password string) (string, error) {
	u, err := s.ownedAccount(ctx, callerID, email)
	if err != nil {
		return "", err
	}
	if !s.Hasher.Compare(u.Password, password) {
		return "", ErrInvalidCredentials
	}
	return s.delete(ctx, u)
}

func (s *AccountService) ownedAccount(ctx context.Context, callerID, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if u.ID != callerID {
		s.Logger.WithFields(logrus.Fields{"caller_id": callerID, "user_id": u.ID}).Warn("account deletion refused")
		return nil, ErrForbidden
	}
	return u, nil
}

func (s *AccountService) delete(ctx context.Context, u *entity.User) (string, error) {
	if err := s.Repo.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("delete user: %w", err)
	}

	if s.Sessions != nil {
		if err := s.Sessions.Revoke(ctx, u.ID); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session revoke failed")
		}
	}
	if s.Index != nil {
		ids := make([]string, 0, len(u.Profiles))
		for _, p := range u.Profiles {
			ids = append(ids, p.ID)
		}
		if err := s.Index.RemoveProfiles(ctx, ids); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index removal failed")
		}
	}
	name := ""
	if p := u.Active(); p != nil {
		name = p.Name
	}
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.AccountDeleted,
		Data:     tpl.NewAccountDeletedData(name, u.Email, tpl.WithTime(time.Now())),
	})
	s.Logger.WithField("user_id", u.ID).Info("account deleted")
	return u.Email, nil
}

func (s *AccountService) issue(ctx context.Context, u *entity.User) (string, time.Time, error) {
	token, exp, err := s.Tokens.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	if s.Sessions != nil {
		if err := s.Sessions.Start(ctx, u.ID, u.Email, s.SessionTTL); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("session start failed")
			return "", time.Time{}, fmt.Errorf("start session: %w", err)
		}
	}
	return token, exp, nil
}
