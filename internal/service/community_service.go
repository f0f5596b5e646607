package service

import (
	"context"
	"unicode/utf8"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"

	"go.uber.org/zap"
)

const (
	MaxCommunityNameLength        = 50
	MaxCommunityDescriptionLength = 200
	MaxCommunityIconLength        = 32
)

type CommunityService struct {
	repo       CommunityStore
	memberRepo MemberStore
	threshold  int
	log        *zap.Logger
	metrics    *pkg.Metrics
}

// NewCommunityService builds the service; threshold <= 0 uses model.DefaultOfficialThreshold.
func NewCommunityService(repo CommunityStore, memberRepo MemberStore, threshold int, log *zap.Logger, metrics *pkg.Metrics) *CommunityService {
	if threshold <= 0 {
		threshold = model.DefaultOfficialThreshold
	}
	return &CommunityService{
		repo:       repo,
		memberRepo: memberRepo,
		threshold:  threshold,
		log:        log,
		metrics:    metrics,
	}
}

// CreateCommunity proposes a community; the creator becomes its first member and supporter.
func (s *CommunityService) CreateCommunity(ctx context.Context, userID, name, desc, icon string) (*model.Community, error) {
	if userID == "" {
		return nil, pkg.Unauthenticated("sign in required")
	}
	name = pkg.CleanText(name)
	desc = pkg.CleanText(desc)
	icon = pkg.CleanText(icon)
	switch {
	case name == "":
		return nil, pkg.Invalid("community name required")
	case desc == "":
		return nil, pkg.Invalid("community description required")
	case icon == "":
		return nil, pkg.Invalid("community icon required")
	case utf8.RuneCountInString(name) > MaxCommunityNameLength:
		return nil, pkg.Invalid("community name is too long")
	case utf8.RuneCountInString(desc) > MaxCommunityDescriptionLength:
		return nil, pkg.Invalid("community description is too long")
	case utf8.RuneCountInString(icon) > MaxCommunityIconLength:
		return nil, pkg.Invalid("community icon is too long")
	}

	community := &model.Community{
		ID:          pkg.NewID(),
		Name:        name,
		Description: desc,
		Icon:        icon,
		CreatorID:   userID,
		Status:      model.CommunityProposed,
	}
	created, err := s.repo.Create(ctx, community)
	if err != nil {
		return nil, storeErr(err, "community")
	}
	s.log.Info("community proposed", zap.String("community_id", created.ID), zap.String("user_id", userID))
	return created, nil
}

func (s *CommunityService) GetCommunity(ctx context.Context, communityID string) (*model.Community, error) {
	if communityID == "" {
		return nil, pkg.Invalid("community id is required")
	}
	c, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return nil, storeErr(err, "community")
	}
	return c, nil
}

// ListCommunities pages communities newest first. status "" lists both kinds.
func (s *CommunityService) ListCommunities(ctx context.Context, status string, page, size int) ([]model.Community, error) {
	if status != "" && status != model.CommunityProposed && status != model.CommunityOfficial {
		return nil, pkg.Invalid("unknown community status")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	offset := (page - 1) * size
	list, err := s.repo.List(ctx, status, offset, size)
	if err != nil {
		return nil, pkg.Transport("list communities", err)
	}
	return list, nil
}

// JoinCommunity is idempotent.
func (s *CommunityService) JoinCommunity(ctx context.Context, userID, communityID string) error {
	if userID == "" {
		return pkg.Unauthenticated("sign in required")
	}
	if _, err := s.GetCommunity(ctx, communityID); err != nil {
		return err
	}
	if _, err := s.memberRepo.Join(ctx, communityID, userID); err != nil {
		return pkg.Transport("join community", err)
	}
	return nil
}

// LeaveCommunity is idempotent. The creator cannot leave.
func (s *CommunityService) LeaveCommunity(ctx context.Context, userID, communityID string) error {
	if userID == "" {
		return pkg.Unauthenticated("sign in required")
	}
	c, err := s.GetCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	if c.CreatorID == userID {
		return pkg.Forbidden("the creator cannot leave the community")
	}
	if err := s.memberRepo.Leave(ctx, communityID, userID); err != nil {
		return pkg.Transport("leave community", err)
	}
	return nil
}

// SupportCommunity adds userID to the supporters. promoted is true only for
// the call that moved the community from proposed to official.
func (s *CommunityService) SupportCommunity(ctx context.Context, userID, communityID string) (*model.Community, bool, error) {
	if userID == "" {
		return nil, false, pkg.Unauthenticated("sign in required")
	}
	if communityID == "" {
		return nil, false, pkg.Invalid("community id is required")
	}
	res, err := s.repo.Support(ctx, communityID, userID, s.threshold)
	if err != nil {
		return nil, false, storeErr(err, "community")
	}
	if res.Promoted {
		s.metrics.CommunityPromoted()
		s.log.Info("community promoted",
			zap.String("community_id", communityID), zap.Int("supporters", res.Community.SupporterCount))
	}
	return res.Community, res.Promoted, nil
}
