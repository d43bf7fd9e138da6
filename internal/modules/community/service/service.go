package community

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/community/dto"
	"anoa.com/communityhub/internal/modules/community/repository"
	tagRepo "anoa.com/communityhub/internal/modules/tag/repository"
	topicRepo "anoa.com/communityhub/internal/modules/topic/repository"
	"anoa.com/communityhub/pkg/apperror"
	commonDto "anoa.com/communityhub/pkg/dto"
	"anoa.com/communityhub/pkg/ratelimiter"
	"anoa.com/communityhub/pkg/slug"
	"anoa.com/communityhub/pkg/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CommunityIndexer pushes community documents to the search index. A nil
// implementation disables indexing.
type CommunityIndexer interface {
	IndexCommunity(ctx context.Context, community *entity.Community, tags []*entity.Tag) error
	DeleteCommunity(ctx context.Context, id uuid.UUID) error
}

// Notifier delivers membership events. A nil implementation disables them.
type Notifier interface {
	NotifyMemberJoined(ctx context.Context, ownerID, actorID, communityID uuid.UUID, communityName string) error
}

type CommunityService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateCommunityRequest, images dto.CommunityImages) (*dto.CommunityResponse, error)
	Update(ctx context.Context, userID, communityID uuid.UUID, req dto.UpdateCommunityRequest, images dto.CommunityImages) (*dto.CommunityResponse, error)
	GetBySlug(ctx context.Context, communitySlug string, viewerID *uuid.UUID) (*dto.CommunityResponse, error)
	List(ctx context.Context, filter dto.CommunityFilter, viewerID *uuid.UUID) (*dto.CommunityListResponse, error)
	GetByTopic(ctx context.Context, topicID uuid.UUID, viewerID *uuid.UUID) ([]dto.CommunityResponse, error)

	Join(ctx context.Context, userID, communityID uuid.UUID) (*dto.CommunityResponse, error)
	Leave(ctx context.Context, userID, communityID uuid.UUID) (*dto.CommunityResponse, error)
	Members(ctx context.Context, communityID uuid.UUID, page, limit int) ([]*entity.CommunityMember, *commonDto.PaginationMeta, error)

	ReconcileCounters(ctx context.Context) error
}

type communityService struct {
	repo       repository.CommunityRepository
	memberRepo repository.MemberRepository
	topicRepo  topicRepo.TopicRepository
	tagRepo    tagRepo.TagRepository
	storage    storage.ImageStorage
	redis      *redis.Client
	indexer    CommunityIndexer
	notifier   Notifier

	createCooldown time.Duration
}

func NewCommunityService(
	repo repository.CommunityRepository,
	memberRepo repository.MemberRepository,
	topicRepo topicRepo.TopicRepository,
	tagRepo tagRepo.TagRepository,
	storage storage.ImageStorage,
	redis *redis.Client,
	indexer CommunityIndexer,
	notifier Notifier,
	createCooldown time.Duration,
) CommunityService {
	return &communityService{
		repo:           repo,
		memberRepo:     memberRepo,
		topicRepo:      topicRepo,
		tagRepo:        tagRepo,
		storage:        storage,
		redis:          redis,
		indexer:        indexer,
		notifier:       notifier,
		createCooldown: createCooldown,
	}
}

func (s *communityService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateCommunityRequest, images dto.CommunityImages) (*dto.CommunityResponse, error) {
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redis, userID, ratelimiter.ScopeCreateCommunity, s.createCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redis, userID, ratelimiter.ScopeCreateCommunity)
		return nil, &ratelimiter.RateLimitError{
			Message:    "you recently created a community, please wait before creating another",
			RetryAfter: ttl,
		}
	}

	resp, err := s.create(ctx, userID, req, images)
	if err != nil {
		// Release the cooldown so a failed attempt does not burn the slot.
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redis, userID, ratelimiter.ScopeCreateCommunity); clearErr != nil {
			log.Printf("failed to clear create-community cooldown for %s: %v", userID, clearErr)
		}
		return nil, err
	}
	return resp, nil
}

func (s *communityService) create(ctx context.Context, userID uuid.UUID, req dto.CreateCommunityRequest, images dto.CommunityImages) (*dto.CommunityResponse, error) {
	interestID, err := uuid.Parse(req.InterestID)
	if err != nil {
		return nil, fmt.Errorf("invalid interest id: %w", apperror.ErrBadRequest)
	}
	topicID, err := uuid.Parse(req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("invalid topic id: %w", apperror.ErrBadRequest)
	}

	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if topic.InterestID != interestID {
		return nil, &apperror.ValidationError{Fields: map[string]string{
			"topic_id": "topic does not belong to the given interest",
		}}
	}
	if !topic.IsActive {
		return nil, &apperror.ValidationError{Fields: map[string]string{
			"topic_id": "topic is not active",
		}}
	}

	tagIDs, err := parseUUIDs(req.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid tag id: %w", apperror.ErrBadRequest)
	}
	tags, err := s.validateTags(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	communitySlug, err := s.uniqueSlug(ctx, slug.Make(req.Name), nil)
	if err != nil {
		return nil, err
	}

	community := &entity.Community{
		Name:        req.Name,
		Slug:        communitySlug,
		Description: req.Description,
		Type:        req.Type,
		Visibility:  req.Visibility,
		JoinPolicy:  req.JoinPolicy,
		Status:      entity.CommunityStatusPublished,
		OwnerID:     userID,
		CreatedBy:   userID,
		MaxMembers:  req.MaxMembers,

		// The creator is a member from the first moment.
		ActiveMembersCount: 1,

		FAQs:                  req.FAQs,
		VerificationQuestions: req.VerificationQuestions,
		CustomTheme:           req.CustomTheme,
		Settings:              req.Settings,
		RankingMetrics:        req.RankingMetrics,
	}

	if err := s.uploadImages(ctx, community, images); err != nil {
		return nil, err
	}

	creator := &entity.CommunityMember{
		UserID:     userID,
		Status:     entity.MemberStatusActive,
		MemberRank: entity.MemberRankLegend,
	}
	if err := s.repo.CreateGraph(ctx, community, topicID, tagIDs, creator); err != nil {
		return nil, err
	}

	s.index(ctx, community, tags)

	return &dto.CommunityResponse{Community: community, Joined: true, Tags: tags}, nil
}

func (s *communityService) Update(ctx context.Context, userID, communityID uuid.UUID, req dto.UpdateCommunityRequest, images dto.CommunityImages) (*dto.CommunityResponse, error) {
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("community not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if community.OwnerID != userID {
		return nil, fmt.Errorf("only the owner can update this community: %w", apperror.ErrForbidden)
	}

	if req.Name != nil && *req.Name != community.Name {
		newSlug, err := s.uniqueSlug(ctx, slug.Make(*req.Name), &community.ID)
		if err != nil {
			return nil, err
		}
		community.Name = *req.Name
		community.Slug = newSlug
	}
	if req.Description != nil {
		community.Description = *req.Description
	}
	if req.Type != nil {
		community.Type = *req.Type
	}
	if req.Visibility != nil {
		community.Visibility = *req.Visibility
	}
	if req.JoinPolicy != nil {
		community.JoinPolicy = *req.JoinPolicy
	}
	if req.MaxMembers != nil {
		if *req.MaxMembers < community.ActiveMembersCount {
			return nil, &apperror.ValidationError{Fields: map[string]string{
				"max_members": "cannot set capacity below the current member count",
			}}
		}
		community.MaxMembers = req.MaxMembers
	}
	if len(req.FAQs) > 0 {
		community.FAQs = req.FAQs
	}
	if len(req.VerificationQuestions) > 0 {
		community.VerificationQuestions = req.VerificationQuestions
	}
	if len(req.CustomTheme) > 0 {
		community.CustomTheme = req.CustomTheme
	}
	if len(req.Settings) > 0 {
		community.Settings = req.Settings
	}

	var topicID *uuid.UUID
	if req.TopicID != nil {
		parsed, err := uuid.Parse(*req.TopicID)
		if err != nil {
			return nil, fmt.Errorf("invalid topic id: %w", apperror.ErrBadRequest)
		}
		topic, err := s.topicRepo.FindByID(ctx, parsed)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		if !topic.IsActive {
			return nil, &apperror.ValidationError{Fields: map[string]string{
				"topic_id": "topic is not active",
			}}
		}
		topicID = &topic.ID
	}

	var addTagIDs, removeTagIDs []uuid.UUID
	if req.TagIDs != nil {
		desired, err := parseUUIDs(*req.TagIDs)
		if err != nil {
			return nil, fmt.Errorf("invalid tag id: %w", apperror.ErrBadRequest)
		}
		current, err := s.repo.TagIDsByCommunity(ctx, community.ID)
		if err != nil {
			return nil, err
		}
		addTagIDs, removeTagIDs = diffUUIDSets(current, desired)
		if _, err := s.validateTags(ctx, addTagIDs); err != nil {
			return nil, err
		}
	}

	oldAvatar, oldBanner := community.AvatarURL, community.BannerURL
	if err := s.uploadImages(ctx, community, images); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateGraph(ctx, community, topicID, addTagIDs, removeTagIDs); err != nil {
		return nil, err
	}

	// Replaced files are cleaned up best effort after the write lands.
	if images.Avatar != nil && oldAvatar != nil {
		s.deleteImage(ctx, *oldAvatar)
	}
	if images.Banner != nil && oldBanner != nil {
		s.deleteImage(ctx, *oldBanner)
	}

	tags, err := s.repo.TagsByCommunity(ctx, community.ID)
	if err != nil {
		return nil, err
	}
	s.index(ctx, community, tags)

	return &dto.CommunityResponse{Community: community, Joined: true, Tags: tags}, nil
}

func (s *communityService) GetBySlug(ctx context.Context, communitySlug string, viewerID *uuid.UUID) (*dto.CommunityResponse, error) {
	community, err := s.repo.FindBySlug(ctx, communitySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("community not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	tags, err := s.repo.TagsByCommunity(ctx, community.ID)
	if err != nil {
		return nil, err
	}

	joined := false
	if viewerID != nil {
		set, err := s.memberRepo.ActiveCommunityIDSet(ctx, *viewerID, []uuid.UUID{community.ID})
		if err != nil {
			return nil, err
		}
		joined = set[community.ID]
	}

	return &dto.CommunityResponse{Community: community, Joined: joined, Tags: tags}, nil
}

func (s *communityService) List(ctx context.Context, filter dto.CommunityFilter, viewerID *uuid.UUID) (*dto.CommunityListResponse, error) {
	paging := commonDto.ListFilter{Page: filter.Page, Limit: filter.Limit}
	paging.Normalize()

	communities, total, err := s.repo.FindPublished(ctx, filter.Search, filter.Type, (paging.Page-1)*paging.Limit, paging.Limit)
	if err != nil {
		return nil, err
	}

	data, err := s.annotateJoined(ctx, communities, viewerID)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(paging.Limit) - 1) / int64(paging.Limit))
	return &dto.CommunityListResponse{
		Data: data,
		Meta: commonDto.PaginationMeta{
			CurrentPage: paging.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       paging.Limit,
		},
	}, nil
}

func (s *communityService) GetByTopic(ctx context.Context, topicID uuid.UUID, viewerID *uuid.UUID) ([]dto.CommunityResponse, error) {
	if _, err := s.topicRepo.FindByID(ctx, topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	communities, err := s.repo.FindByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return s.annotateJoined(ctx, communities, viewerID)
}

// annotateJoined resolves the joined flag for a page of communities with a
// single membership query. Anonymous viewers always get false.
func (s *communityService) annotateJoined(ctx context.Context, communities []*entity.Community, viewerID *uuid.UUID) ([]dto.CommunityResponse, error) {
	joined := map[uuid.UUID]bool{}
	if viewerID != nil && len(communities) > 0 {
		ids := make([]uuid.UUID, 0, len(communities))
		for _, c := range communities {
			ids = append(ids, c.ID)
		}
		var err error
		joined, err = s.memberRepo.ActiveCommunityIDSet(ctx, *viewerID, ids)
		if err != nil {
			return nil, err
		}
	}

	data := make([]dto.CommunityResponse, 0, len(communities))
	for _, c := range communities {
		data = append(data, dto.CommunityResponse{Community: c, Joined: joined[c.ID]})
	}
	return data, nil
}

func (s *communityService) validateTags(ctx context.Context, tagIDs []uuid.UUID) ([]*entity.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	tags, err := s.tagRepo.FindByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, &apperror.ValidationError{Fields: map[string]string{
			"tags": "one or more tags do not exist",
		}}
	}
	for _, tag := range tags {
		if !tag.IsActive {
			return nil, &apperror.ValidationError{Fields: map[string]string{
				"tags": fmt.Sprintf("tag %q is not active", tag.Name),
			}}
		}
	}
	return tags, nil
}

func (s *communityService) uploadImages(ctx context.Context, community *entity.Community, images dto.CommunityImages) error {
	if s.storage == nil {
		return nil
	}
	if images.Avatar != nil {
		url, err := s.storage.UploadImage(ctx, images.Avatar.Reader, "communities/avatars", images.Avatar.FileName)
		if err != nil {
			return fmt.Errorf("failed to upload avatar: %w", err)
		}
		community.AvatarURL = &url
	}
	if images.Banner != nil {
		url, err := s.storage.UploadImage(ctx, images.Banner.Reader, "communities/banners", images.Banner.FileName)
		if err != nil {
			return fmt.Errorf("failed to upload banner: %w", err)
		}
		community.BannerURL = &url
	}
	return nil
}

func (s *communityService) deleteImage(ctx context.Context, url string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.DeleteImage(ctx, url); err != nil {
		log.Printf("failed to delete replaced community image %s: %v", url, err)
	}
}

func (s *communityService) index(ctx context.Context, community *entity.Community, tags []*entity.Tag) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexCommunity(ctx, community, tags); err != nil {
		log.Printf("failed to index community %s: %v", community.ID, err)
	}
}
