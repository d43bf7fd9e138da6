package profile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"anoa.com/communityhub/internal/entity"
	followRepo "anoa.com/communityhub/internal/modules/follow/repository"
	"anoa.com/communityhub/internal/modules/profile/dto"
	"anoa.com/communityhub/internal/modules/profile/repository"
	userRepo "anoa.com/communityhub/internal/modules/user/repository"
	"anoa.com/communityhub/pkg/apperror"
	"anoa.com/communityhub/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetByUsername(ctx context.Context, username string, viewerID *uuid.UUID) (*dto.ProfileResponse, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
	Update(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, file *dto.AvatarFile) (*entity.User, error)
}

type profileService struct {
	repo       repository.ProfileRepository
	userRepo   userRepo.UserRepository
	followRepo followRepo.FollowRepository
	storage    storage.ImageStorage
}

func NewProfileService(repo repository.ProfileRepository, userRepo userRepo.UserRepository, followRepo followRepo.FollowRepository, storage storage.ImageStorage) ProfileService {
	return &profileService{repo: repo, userRepo: userRepo, followRepo: followRepo, storage: storage}
}

func (s *profileService) GetByUsername(ctx context.Context, username string, viewerID *uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByUsernameWithCollections(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp, err := s.compose(ctx, user)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && *viewerID != user.ID {
		following := false
		edge, err := s.followRepo.Find(ctx, *viewerID, user.ID)
		if err == nil {
			following = edge.IsAccepted && edge.BlockedAt == nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		resp.IsFollowing = &following
	}

	// Private profiles hide the owned collections from non-followers.
	if user.IsPrivate && (viewerID == nil || *viewerID != user.ID) {
		allowed := resp.IsFollowing != nil && *resp.IsFollowing
		if !allowed {
			resp.Educations = nil
			resp.Experiences = nil
			resp.SocialLinks = nil
		}
	}

	return resp, nil
}

func (s *profileService) GetMe(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByIDWithCollections(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return s.compose(ctx, user)
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByIDWithCollections(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Headline != nil {
		user.Headline = req.Headline
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Location != nil {
		user.Location = req.Location
	}
	if req.IsPrivate != nil {
		user.IsPrivate = *req.IsPrivate
	}

	var educations *[]entity.Education
	if req.Educations != nil {
		rows := make([]entity.Education, 0, len(*req.Educations))
		for _, in := range *req.Educations {
			rows = append(rows, in.ToEntity(userID))
		}
		educations = &rows
	}

	var experiences *[]entity.Experience
	if req.Experiences != nil {
		rows := make([]entity.Experience, 0, len(*req.Experiences))
		for _, in := range *req.Experiences {
			rows = append(rows, in.ToEntity(userID))
		}
		experiences = &rows
	}

	var socialLinks *[]entity.SocialLink
	if req.SocialLinks != nil {
		rows := make([]entity.SocialLink, 0, len(*req.SocialLinks))
		for _, in := range *req.SocialLinks {
			rows = append(rows, in.ToEntity(userID))
		}
		socialLinks = &rows
	}

	if err := s.repo.UpdateProfile(ctx, user, educations, experiences, socialLinks); err != nil {
		return nil, err
	}

	return s.GetMe(ctx, userID)
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file *dto.AvatarFile) (*entity.User, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("image storage is not configured: %w", apperror.ErrInternal)
	}

	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	url, err := s.storage.UploadImage(ctx, file.Reader, "profiles/avatars", file.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldURL := user.AvatarURL
	user.AvatarURL = &url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if oldURL != nil {
		if err := s.storage.DeleteImage(ctx, *oldURL); err != nil {
			log.Printf("failed to delete replaced avatar %s: %v", *oldURL, err)
		}
	}

	return user, nil
}

func (s *profileService) compose(ctx context.Context, user *entity.User) (*dto.ProfileResponse, error) {
	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		User: user,
		Network: dto.NetworkStats{
			FollowersCount: followers,
			FollowingCount: following,
		},
	}, nil
}
