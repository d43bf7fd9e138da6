package community

import (
	"context"
	"errors"
	"fmt"
	"log"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/community/dto"
	"anoa.com/communityhub/pkg/apperror"
	commonDto "anoa.com/communityhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *communityService) Join(ctx context.Context, userID, communityID uuid.UUID) (*dto.CommunityResponse, error) {
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("community not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if community.Status != entity.CommunityStatusPublished {
		return nil, fmt.Errorf("community is not open for joining: %w", apperror.ErrForbidden)
	}

	if _, err := s.memberRepo.Join(ctx, communityID, userID); err != nil {
		return nil, err
	}

	if s.notifier != nil && community.OwnerID != userID {
		if err := s.notifier.NotifyMemberJoined(ctx, community.OwnerID, userID, community.ID, community.Name); err != nil {
			log.Printf("failed to notify owner of join on %s: %v", community.Slug, err)
		}
	}

	return s.refreshed(ctx, communityID, true)
}

func (s *communityService) Leave(ctx context.Context, userID, communityID uuid.UUID) (*dto.CommunityResponse, error) {
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("community not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if community.OwnerID == userID {
		return nil, fmt.Errorf("owner cannot leave, transfer ownership first: %w", apperror.ErrConflict)
	}

	if err := s.memberRepo.Leave(ctx, communityID, userID); err != nil {
		return nil, err
	}

	return s.refreshed(ctx, communityID, false)
}

// refreshed re-reads the community after a membership mutation so the caller
// gets the updated active_members_count and the actor's joined flag.
func (s *communityService) refreshed(ctx context.Context, communityID uuid.UUID, joined bool) (*dto.CommunityResponse, error) {
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.TagsByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return &dto.CommunityResponse{Community: community, Joined: joined, Tags: tags}, nil
}

func (s *communityService) Members(ctx context.Context, communityID uuid.UUID, page, limit int) ([]*entity.CommunityMember, *commonDto.PaginationMeta, error) {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("community not found: %w", apperror.ErrNotFound)
		}
		return nil, nil, err
	}

	paging := commonDto.ListFilter{Page: page, Limit: limit}
	paging.Normalize()

	members, total, err := s.memberRepo.FindByCommunity(ctx, communityID, (paging.Page-1)*paging.Limit, paging.Limit)
	if err != nil {
		return nil, nil, err
	}

	totalPages := int((total + int64(paging.Limit) - 1) / int64(paging.Limit))
	return members, &commonDto.PaginationMeta{
		CurrentPage: paging.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       paging.Limit,
	}, nil
}
