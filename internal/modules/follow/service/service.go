package follow

import (
	"context"
	"errors"
	"fmt"
	"log"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/follow/dto"
	"anoa.com/communityhub/internal/modules/follow/repository"
	userRepo "anoa.com/communityhub/internal/modules/user/repository"
	"anoa.com/communityhub/pkg/apperror"
	commonDto "anoa.com/communityhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier delivers follow events. A nil implementation disables them.
type Notifier interface {
	NotifyFollowRequested(ctx context.Context, targetID, actorID uuid.UUID) error
	NotifyFollowed(ctx context.Context, targetID, actorID uuid.UUID) error
	NotifyFollowAccepted(ctx context.Context, followerID, actorID uuid.UUID) error
}

type FollowService interface {
	Follow(ctx context.Context, followerID, followedID uuid.UUID) (*dto.FollowResponse, error)
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error
	Accept(ctx context.Context, userID, followerID uuid.UUID) (*entity.Follow, error)
	Block(ctx context.Context, blockerID, blockedID uuid.UUID) error
	Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error
	Followers(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*dto.FollowListResponse, error)
	Following(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*dto.FollowListResponse, error)
}

type followService struct {
	repo     repository.FollowRepository
	userRepo userRepo.UserRepository
	notifier Notifier
}

func NewFollowService(repo repository.FollowRepository, userRepo userRepo.UserRepository, notifier Notifier) FollowService {
	return &followService{repo: repo, userRepo: userRepo, notifier: notifier}
}

func (s *followService) Follow(ctx context.Context, followerID, followedID uuid.UUID) (*dto.FollowResponse, error) {
	if followerID == followedID {
		return nil, fmt.Errorf("cannot follow yourself: %w", apperror.ErrBadRequest)
	}

	target, err := s.userRepo.FindByID(ctx, followedID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	// Private accounts get a pending edge awaiting their approval.
	edge := &entity.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		IsAccepted: !target.IsPrivate,
	}
	if err := s.repo.CreateEdge(ctx, edge); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		var notifyErr error
		if target.IsPrivate {
			notifyErr = s.notifier.NotifyFollowRequested(ctx, followedID, followerID)
		} else {
			notifyErr = s.notifier.NotifyFollowed(ctx, followedID, followerID)
		}
		if notifyErr != nil {
			log.Printf("failed to send follow notification to %s: %v", followedID, notifyErr)
		}
	}

	return &dto.FollowResponse{Follow: edge, Pending: !edge.IsAccepted}, nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return fmt.Errorf("cannot unfollow yourself: %w", apperror.ErrBadRequest)
	}
	return s.repo.Delete(ctx, followerID, followedID)
}

func (s *followService) Accept(ctx context.Context, userID, followerID uuid.UUID) (*entity.Follow, error) {
	edge, err := s.repo.Accept(ctx, followerID, userID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyFollowAccepted(ctx, followerID, userID); err != nil {
			log.Printf("failed to send follow-accept notification to %s: %v", followerID, err)
		}
	}
	return edge, nil
}

func (s *followService) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return fmt.Errorf("cannot block yourself: %w", apperror.ErrBadRequest)
	}
	if _, err := s.userRepo.FindByID(ctx, blockedID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return s.repo.Block(ctx, blockerID, blockedID)
}

func (s *followService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return fmt.Errorf("cannot unblock yourself: %w", apperror.ErrBadRequest)
	}
	return s.repo.Unblock(ctx, blockerID, blockedID)
}

func (s *followService) Followers(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*dto.FollowListResponse, error) {
	cursorID, limit, err := parseCursor(cursor, limit)
	if err != nil {
		return nil, err
	}

	follows, err := s.repo.Followers(ctx, userID, cursorID, limit)
	if err != nil {
		return nil, err
	}
	return buildList(follows, limit, func(f *entity.Follow) *entity.User { return f.Follower }), nil
}

func (s *followService) Following(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*dto.FollowListResponse, error) {
	cursorID, limit, err := parseCursor(cursor, limit)
	if err != nil {
		return nil, err
	}

	follows, err := s.repo.Following(ctx, userID, cursorID, limit)
	if err != nil {
		return nil, err
	}
	return buildList(follows, limit, func(f *entity.Follow) *entity.User { return f.Followed }), nil
}

func parseCursor(cursor string, limit int) (*uuid.UUID, int, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	if cursor == "" {
		return nil, limit, nil
	}
	id, err := uuid.Parse(cursor)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid cursor: %w", apperror.ErrBadRequest)
	}
	return &id, limit, nil
}

func buildList(follows []*entity.Follow, limit int, pick func(*entity.Follow) *entity.User) *dto.FollowListResponse {
	data := make([]dto.FollowUser, 0, len(follows))
	for _, f := range follows {
		user := pick(f)
		if user == nil {
			continue
		}
		data = append(data, dto.FollowUser{
			ID:        user.ID.String(),
			Username:  user.Username,
			FullName:  user.FullName,
			Headline:  user.Headline,
			AvatarURL: user.AvatarURL,
		})
	}

	meta := commonDto.CursorMeta{Limit: limit}
	if len(follows) == limit {
		meta.NextCursor = follows[len(follows)-1].ID.String()
	}
	return &dto.FollowListResponse{Data: data, Meta: meta}
}
