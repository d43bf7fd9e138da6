package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/notification/repository"
	userRepo "anoa.com/communityhub/internal/modules/user/repository"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ChannelFor names the redis pub/sub channel carrying a user's live
// notification feed.
func ChannelFor(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

type NotificationService interface {
	Create(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	// Event hooks wired into the community and follow services.
	NotifyMemberJoined(ctx context.Context, ownerID, actorID, communityID uuid.UUID, communityName string) error
	NotifyFollowRequested(ctx context.Context, targetID, actorID uuid.UUID) error
	NotifyFollowed(ctx context.Context, targetID, actorID uuid.UUID) error
	NotifyFollowAccepted(ctx context.Context, followerID, actorID uuid.UUID) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo userRepo.UserRepository
	redis    *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, userRepo userRepo.UserRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{repo: repo, userRepo: userRepo, redis: redisClient}
}

func (s *notificationService) Create(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	// Live delivery is best effort, the row is the source of truth.
	if s.redis != nil {
		if payload, err := json.Marshal(notification); err == nil {
			s.redis.Publish(ctx, ChannelFor(notification.UserID), payload)
		}
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.Notification, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FindByUser(ctx, userID, offset, limit)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) NotifyMemberJoined(ctx context.Context, ownerID, actorID, communityID uuid.UUID, communityName string) error {
	actorName := s.actorName(ctx, actorID)
	return s.Create(ctx, &entity.Notification{
		UserID:      ownerID,
		ActorID:     &actorID,
		Type:        entity.NotificationMemberJoined,
		Message:     fmt.Sprintf("%s joined %s", actorName, communityName),
		ReferenceID: communityID.String(),
	})
}

func (s *notificationService) NotifyFollowRequested(ctx context.Context, targetID, actorID uuid.UUID) error {
	actorName := s.actorName(ctx, actorID)
	return s.Create(ctx, &entity.Notification{
		UserID:      targetID,
		ActorID:     &actorID,
		Type:        entity.NotificationFollowRequest,
		Message:     fmt.Sprintf("%s requested to follow you", actorName),
		ReferenceID: actorID.String(),
	})
}

func (s *notificationService) NotifyFollowed(ctx context.Context, targetID, actorID uuid.UUID) error {
	actorName := s.actorName(ctx, actorID)
	return s.Create(ctx, &entity.Notification{
		UserID:      targetID,
		ActorID:     &actorID,
		Type:        entity.NotificationFollowed,
		Message:     fmt.Sprintf("%s started following you", actorName),
		ReferenceID: actorID.String(),
	})
}

func (s *notificationService) NotifyFollowAccepted(ctx context.Context, followerID, actorID uuid.UUID) error {
	actorName := s.actorName(ctx, actorID)
	return s.Create(ctx, &entity.Notification{
		UserID:      followerID,
		ActorID:     &actorID,
		Type:        entity.NotificationFollowAccept,
		Message:     fmt.Sprintf("%s accepted your follow request", actorName),
		ReferenceID: actorID.String(),
	})
}

func (s *notificationService) actorName(ctx context.Context, actorID uuid.UUID) string {
	actor, err := s.userRepo.FindByID(ctx, actorID.String())
	if err != nil {
		return "Someone"
	}
	if actor.FullName != "" {
		return actor.FullName
	}
	return actor.Username
}
