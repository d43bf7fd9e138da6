package community

import (
	"context"
	"fmt"

	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
)

const maxSlugProbes = 100

// uniqueSlug probes base, base-1, base-2 and so on until a free slug is
// found. The unique index on communities.slug backstops concurrent probes.
// Names made of nothing but stripped characters produce an empty base and
// would mint unroutable slugs, so they are rejected up front.
func (s *communityService) uniqueSlug(ctx context.Context, base string, excludeID *uuid.UUID) (string, error) {
	if base == "" {
		return "", &apperror.ValidationError{Fields: map[string]string{
			"name": "name must contain at least one letter or digit",
		}}
	}

	candidate := base
	for i := 0; i <= maxSlugProbes; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free slug for %q", base)
}

func parseUUIDs(ids []string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parsed := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		parsed = append(parsed, id)
	}
	return parsed, nil
}

// diffUUIDSets returns the ids to add (in desired, not in current) and to
// remove (in current, not in desired). Unchanged ids are never touched.
func diffUUIDSets(current, desired []uuid.UUID) (add, remove []uuid.UUID) {
	currentSet := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[uuid.UUID]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	for _, id := range desired {
		if !currentSet[id] {
			add = append(add, id)
		}
	}
	for _, id := range current {
		if !desiredSet[id] {
			remove = append(remove, id)
		}
	}
	return add, remove
}
