package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"

	"go.uber.org/zap"
)

// Where the client goes after sign in.
const (
	StepPendingReview = "PendingReview"
	StepProfileEdit   = "ProfileEdit"
	StepMainApp       = "MainApp"
)

const (
	MaxTags             = 10
	MaxProfileFieldLen  = 100
	DefaultDiscoverSize = 50
)

var errNoImageStore = errors.New("image store not configured")

type ProfileInput struct {
	FullName    string   `json:"full_name"`
	CompanyName string   `json:"company_name"`
	Position    string   `json:"position"`
	Bio         string   `json:"bio"`
	Tags        []string `json:"tags"`
	Needs       string   `json:"needs"`
	Seeds       string   `json:"seeds"`
}

// Image is an uploaded file body.
type Image struct {
	Data        []byte
	ContentType string
}

type UserService struct {
	repo   UserStore
	swipes SwipeStore
	images ImageUploader
	log    *zap.Logger
}

func NewUserService(repo UserStore, swipes SwipeStore, images ImageUploader, log *zap.Logger) *UserService {
	return &UserService{repo: repo, swipes: swipes, images: images, log: log}
}

// Register creates the account in pending_review. Calling it again returns the stored user.
func (s *UserService) Register(ctx context.Context, userID, email string) (*model.User, error) {
	if userID == "" {
		return nil, pkg.Unauthenticated("sign in required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, pkg.Invalid("email is required")
	}
	created, err := s.repo.Create(ctx, &model.User{
		ID:     userID,
		Email:  email,
		Status: model.UserPendingReview,
	})
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if created {
		s.log.Info("user registered", zap.String("user_id", userID))
	}
	return s.GetUser(ctx, userID)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, pkg.Invalid("user id is required")
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

// NextStep routes a signed in user by review status and profile completeness.
func NextStep(u *model.User) (string, error) {
	if u == nil {
		return "", pkg.NotFound("user not found")
	}
	switch u.Status {
	case model.UserPendingReview:
		return StepPendingReview, nil
	case model.UserApproved:
		if u.HasProfile() {
			return StepMainApp, nil
		}
		return StepProfileEdit, nil
	}
	return "", pkg.Invalid("account state invalid")
}

func BusinessCardPath(userID string) string {
	return "business_cards/" + userID + "/business_card.jpg"
}

func ProfileImagePath(userID string) string {
	return "profile_images/" + userID + "/profile.jpg"
}

// UploadBusinessCard stores the card image for review and returns its URL.
func (s *UserService) UploadBusinessCard(ctx context.Context, userID string, img Image) (string, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return "", err
	}
	if len(img.Data) == 0 {
		return "", pkg.Invalid("business card image is required")
	}
	url, err := s.upload(ctx, BusinessCardPath(userID), img)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateBusinessCard(ctx, userID, url); err != nil {
		return "", storeErr(err, "user")
	}
	return url, nil
}

// UpdateProfile replaces the profile. A nil image keeps the current picture.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput, img *Image) (*model.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := model.Profile{
		FullName:        pkg.CleanText(in.FullName),
		CompanyName:     pkg.CleanText(in.CompanyName),
		Position:        pkg.CleanText(in.Position),
		Bio:             pkg.CleanText(in.Bio),
		ProfileImageURL: u.Profile.ProfileImageURL,
	}
	if p.FullName == "" {
		return nil, pkg.Invalid("full name is required")
	}
	for _, f := range []string{p.FullName, p.CompanyName, p.Position} {
		if utf8.RuneCountInString(f) > MaxProfileFieldLen {
			return nil, pkg.Invalid("profile field is too long")
		}
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	oi := model.OpenInnovation{Needs: pkg.CleanText(in.Needs), Seeds: pkg.CleanText(in.Seeds)}

	if img != nil && len(img.Data) > 0 {
		url, err := s.upload(ctx, ProfileImagePath(userID), *img)
		if err != nil {
			return nil, err
		}
		p.ProfileImageURL = url
	}
	if err := s.repo.UpdateProfile(ctx, userID, p, oi); err != nil {
		return nil, storeErr(err, "user")
	}
	u.Profile = p
	u.OpenInnovation = oi
	return u, nil
}

// NormalizeTags trims and dedupes tags, dropping empties; entries may hold
// comma separated lists.
func NormalizeTags(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, t := range strings.Split(raw, ",") {
			t = pkg.CleanText(t)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	if len(out) > MaxTags {
		return nil, pkg.Invalid("at most 10 tags")
	}
	return out, nil
}

func (s *UserService) SetDeviceToken(ctx context.Context, userID, token string) error {
	if userID == "" {
		return pkg.Unauthenticated("sign in required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return pkg.Invalid("device token is required")
	}
	if err := s.repo.UpdateDeviceToken(ctx, userID, token); err != nil {
		return storeErr(err, "user")
	}
	return nil
}

// DiscoverUsers returns approved users with a profile that userID has not rated yet.
func (s *UserService) DiscoverUsers(ctx context.Context, userID string, limit int) ([]model.User, error) {
	if userID == "" {
		return nil, pkg.Unauthenticated("sign in required")
	}
	if limit <= 0 || limit > DefaultDiscoverSize {
		limit = DefaultDiscoverSize
	}
	swiped, err := s.swipes.SwipedTargets(ctx, userID)
	if err != nil {
		return nil, pkg.Transport("list swiped targets", err)
	}
	skip := make(map[string]struct{}, len(swiped)+1)
	skip[userID] = struct{}{}
	for _, id := range swiped {
		skip[id] = struct{}{}
	}

	candidates, err := s.repo.ListApproved(ctx, 0)
	if err != nil {
		return nil, pkg.Transport("list users", err)
	}
	out := make([]model.User, 0, limit)
	for _, u := range candidates {
		if _, ok := skip[u.ID]; ok || !u.HasProfile() {
			continue
		}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *UserService) upload(ctx context.Context, key string, img Image) (string, error) {
	if s.images == nil {
		return "", pkg.Transport("upload image", errNoImageStore)
	}
	url, err := s.images.Upload(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", pkg.Transport("upload image", err)
	}
	return url, nil
}
