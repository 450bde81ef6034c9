package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/linkbio/internal/domain/entity"
	repo "github.com/oksasatya/linkbio/internal/domain/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxSearchSize    = 50
)

// ProfileService manages the profile collection of a user. Every mutation
// loads the whole aggregate, edits it in memory and replaces it.
type ProfileService struct {
	Deps
	slugs *SlugAllocator
}

func NewProfileService(d Deps) *ProfileService {
	d = d.withDefaults()
	return &ProfileService{Deps: d, slugs: NewSlugAllocator(d.Repo)}
}

// ProfileUpdate holds a partial update. Empty fields keep their value.
type ProfileUpdate struct {
	Name    string
	PhoneNo string
	About   string
	Links   []entity.Link
}

// ProfileView is the owner's view of a profile.
type ProfileView struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	PhoneNo    string        `json:"phoneNo"`
	About      string        `json:"about"`
	Links      []entity.Link `json:"links"`
	URLSlug    string        `json:"urlSlug"`
	AvatarURL  string        `json:"avatarUrl,omitempty"`
	ProfileURL string        `json:"profileUrl"`
}

type ProfileListing struct {
	ActiveProfile int           `json:"activeProfile"`
	TotalProfiles int           `json:"totalProfiles"`
	Profiles      []ProfileView `json:"profiles"`
}

type SwitchResult struct {
	ActiveProfile int
	ProfileURL    string
}

// PublicProfile is what anonymous visitors see at a slug.
type PublicProfile struct {
	Name      string        `json:"name"`
	PhoneNo   string        `json:"phoneNo"`
	About     string        `json:"about"`
	Links     []entity.Link `json:"links"`
	AvatarURL string        `json:"avatarUrl,omitempty"`
}

// DirectoryEntry is one item of the public directory or search results.
type DirectoryEntry struct {
	Name       string        `json:"name"`
	About      string        `json:"about"`
	Links      []entity.Link `json:"links"`
	URLSlug    string        `json:"urlSlug"`
	AvatarURL  string        `json:"avatarUrl,omitempty"`
	ProfileURL string        `json:"profileUrl"`
}

type PublicQuery struct {
	Page   int
	Limit  int
	Search string
}

type PublicPage struct {
	Profiles      []DirectoryEntry `json:"profiles"`
	CurrentPage   int              `json:"currentPage"`
	TotalPages    int              `json:"totalPages"`
	TotalProfiles int              `json:"totalProfiles"`
}

func (s *ProfileService) load(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *ProfileService) replace(ctx context.Context, u *entity.User) error {
	err := s.Repo.Replace(ctx, u)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *ProfileService) view(p *entity.Profile) ProfileView {
	return ProfileView{
		ID:         p.ID,
		Name:       p.Name,
		PhoneNo:    p.PhoneNo,
		About:      p.About,
		Links:      p.Links,
		URLSlug:    p.URLSlug,
		AvatarURL:  p.AvatarURL,
		ProfileURL: ProfileURL(s.BaseURL, p.URLSlug),
	}
}

func (s *ProfileService) entry(p *entity.Profile) DirectoryEntry {
	return DirectoryEntry{
		Name:       p.Name,
		About:      p.About,
		Links:      p.PublicLinks(),
		URLSlug:    p.URLSlug,
		AvatarURL:  p.AvatarURL,
		ProfileURL: ProfileURL(s.BaseURL, p.URLSlug),
	}
}

// CreateProfile appends a profile to the user's collection.
func (s *ProfileService) CreateProfile(ctx context.Context, userID string, f ProfileFields) (string, error) {
	f = f.trimmed()
	u, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	if !u.CanAddProfile() {
		return "", ErrProfileLimit
	}

	slug, err := s.slugs.Allocate(ctx, f.Name)
	if err != nil {
		return "", fmt.Errorf("allocate slug: %w", err)
	}
	u.Profiles = append(u.Profiles, newProfile(f, slug))
	idx := len(u.Profiles) - 1

	err = writeWithSlugRetry(ctx, s.slugs, u, idx, f.Name, func() error {
		return s.replace(ctx, u)
	})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("create profile failed")
		return "", err
	}
	s.indexUser(ctx, u)
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "slug": u.Profiles[idx].URLSlug}).Info("profile created")
	return ProfileURL(s.BaseURL, u.Profiles[idx].URLSlug), nil
}

// UpdateProfile merges in into the profile with profileID, or into the
// active profile when profileID is empty. A changed name moves the profile
// to a freshly allocated slug; the old slug is released by the write.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID, profileID string, in ProfileUpdate) (string, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	idx := u.ActiveProfile
	if profileID != "" {
		idx = u.ProfileIndex(profileID)
	}
	if idx < 0 || idx >= len(u.Profiles) {
		return "", ErrProfileNotFound
	}

	p := &u.Profiles[idx]
	in.Name = strings.TrimSpace(in.Name)
	renamed := in.Name != "" && in.Name != p.Name
	if renamed {
		slug, err := s.slugs.Allocate(ctx, in.Name)
		if err != nil {
			return "", fmt.Errorf("allocate slug: %w", err)
		}
		p.URLSlug = slug
		p.Name = in.Name
	}
	if in.PhoneNo != "" {
		p.PhoneNo = in.PhoneNo
	}
	if in.About != "" {
		p.About = in.About
	}
	if len(in.Links) > 0 {
		p.Links = in.Links
	}

	write := func() error { return s.replace(ctx, u) }
	if renamed {
		err = writeWithSlugRetry(ctx, s.slugs, u, idx, in.Name, write)
	} else {
		err = write()
	}
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("update profile failed")
		return "", err
	}
	s.indexUser(ctx, u)
	return ProfileURL(s.BaseURL, u.Profiles[idx].URLSlug), nil
}

// SwitchProfile points the active profile at index.
func (s *ProfileService) SwitchProfile(ctx context.Context, userID string, index int) (*SwitchResult, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(u.Profiles) {
		return nil, ErrProfileNotFound
	}
	u.ActiveProfile = index
	if err := s.replace(ctx, u); err != nil {
		return nil, err
	}
	return &SwitchResult{
		ActiveProfile: index,
		ProfileURL:    ProfileURL(s.BaseURL, u.Profiles[index].URLSlug),
	}, nil
}

func (s *ProfileService) GetAllProfiles(ctx context.Context, userID string) (*ProfileListing, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &ProfileListing{
		ActiveProfile: u.ActiveProfile,
		TotalProfiles: len(u.Profiles),
		Profiles:      make([]ProfileView, 0, len(u.Profiles)),
	}
	for i := range u.Profiles {
		out.Profiles = append(out.Profiles, s.view(&u.Profiles[i]))
	}
	return out, nil
}

func (s *ProfileService) GetActiveProfile(ctx context.Context, userID string) (*ProfileView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.Active()
	if p == nil {
		return nil, ErrProfileNotFound
	}
	v := s.view(p)
	return &v, nil
}

func (s *ProfileService) GetProfileByID(ctx context.Context, userID, profileID string) (*ProfileView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := u.ProfileIndex(profileID)
	if idx < 0 {
		return nil, ErrProfileNotFound
	}
	v := s.view(&u.Profiles[idx])
	return &v, nil
}

// GetProfile resolves a slug across all users. Private links are hidden.
func (s *ProfileService) GetProfile(ctx context.Context, urlSlug string) (*PublicProfile, error) {
	u, err := s.Repo.GetBySlug(ctx, urlSlug)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup slug: %w", err)
	}
	p := u.ProfileBySlug(urlSlug)
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return &PublicProfile{
		Name:      p.Name,
		PhoneNo:   p.PhoneNo,
		About:     p.About,
		Links:     p.PublicLinks(),
		AvatarURL: p.AvatarURL,
	}, nil
}

// GetPublicProfiles pages through the flattened profile directory.
// Page size and totals both count profiles.
func (s *ProfileService) GetPublicProfiles(ctx context.Context, q PublicQuery) (*PublicPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	// keeps (Page-1)*Limit within int
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}

	rows, total, err := s.Repo.ListPublic(ctx, repo.PublicQuery{
		Search: strings.TrimSpace(q.Search),
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list public profiles: %w", err)
	}

	page := &PublicPage{
		Profiles:      make([]DirectoryEntry, 0, len(rows)),
		CurrentPage:   q.Page,
		TotalPages:    (total + q.Limit - 1) / q.Limit,
		TotalProfiles: total,
	}
	for i := range rows {
		page.Profiles = append(page.Profiles, s.entry(&rows[i].Profile))
	}
	return page, nil
}

// SearchProfiles runs a full-text query against the profile index.
// Without an index it returns no results.
func (s *ProfileService) SearchProfiles(ctx context.Context, q string, size int) ([]DirectoryEntry, error) {
	out := []DirectoryEntry{}
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return out, nil
	}
	if size <= 0 {
		size = defaultPageLimit
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	hits, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	for i := range hits {
		out = append(out, s.entry(&hits[i]))
	}
	return out, nil
}

// UploadAvatar stores an image for one of the user's profiles and records its URL.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, profileID string, r io.Reader, filename, contentType string) (string, error) {
	if s.Avatars == nil {
		return "", ErrStorageUnavailable
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	idx := u.ProfileIndex(profileID)
	if idx < 0 {
		return "", ErrProfileNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, profileID, uuid.NewString()+ext))
	url, err := s.Avatars.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		s.Logger.WithError(err).WithField("object", objectPath).Error("avatar upload failed")
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	u.Profiles[idx].AvatarURL = url
	if err := s.replace(ctx, u); err != nil {
		return "", err
	}
	s.indexUser(ctx, u)
	return url, nil
}
