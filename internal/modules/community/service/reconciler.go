package community

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

const reconcileBatchSize = 500

// ReconcileCounters recounts active_members_count and tag usage_count from
// their source-of-truth rows and fixes any drift. Drift can accumulate from
// crashed transactions or manual data surgery.
func (s *communityService) ReconcileCounters(ctx context.Context) error {
	if err := s.reconcileCommunities(ctx); err != nil {
		return err
	}
	return s.reconcileTags(ctx)
}

func (s *communityService) reconcileCommunities(ctx context.Context) error {
	lastID := uuid.Nil
	for {
		pairs, err := s.repo.ListCommunityCounters(ctx, lastID, reconcileBatchSize)
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			return nil
		}

		for _, pair := range pairs {
			actual, err := s.repo.CountActiveMembers(ctx, pair.ID)
			if err != nil {
				return err
			}
			if actual != pair.Count {
				log.Printf("reconciling community %s member count %d -> %d", pair.ID, pair.Count, actual)
				if err := s.repo.SetActiveMembersCount(ctx, pair.ID, actual); err != nil {
					return err
				}
			}
		}
		lastID = pairs[len(pairs)-1].ID
	}
}

func (s *communityService) reconcileTags(ctx context.Context) error {
	lastID := uuid.Nil
	for {
		pairs, err := s.repo.ListTagCounters(ctx, lastID, reconcileBatchSize)
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			return nil
		}

		for _, pair := range pairs {
			actual, err := s.repo.CountTagUsage(ctx, pair.ID)
			if err != nil {
				return err
			}
			if actual != pair.Count {
				log.Printf("reconciling tag %s usage count %d -> %d", pair.ID, pair.Count, actual)
				if err := s.repo.SetTagUsageCount(ctx, pair.ID, actual); err != nil {
					return err
				}
			}
		}
		lastID = pairs[len(pairs)-1].ID
	}
}

// RunReconciler loops ReconcileCounters on the given interval until the
// context is cancelled. Meant to run in its own goroutine from main.
func RunReconciler(ctx context.Context, svc CommunityService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.ReconcileCounters(ctx); err != nil {
				log.Printf("counter reconciliation failed: %v", err)
			}
		}
	}
}
