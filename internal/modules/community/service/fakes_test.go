package community

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/community/repository"
	topicDto "anoa.com/communityhub/internal/modules/topic/dto"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory stand-ins for the gorm repositories. They reproduce the
// uniqueness, capacity and counter rules the SQL layer enforces so the
// service logic can be exercised without a database.

type fakeCommunityRepo struct {
	communities map[uuid.UUID]*entity.Community
	topics      map[uuid.UUID]uuid.UUID   // community -> topic
	tags        map[uuid.UUID][]uuid.UUID // community -> tags
	tagUsage    map[uuid.UUID]int
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{
		communities: map[uuid.UUID]*entity.Community{},
		topics:      map[uuid.UUID]uuid.UUID{},
		tags:        map[uuid.UUID][]uuid.UUID{},
		tagUsage:    map[uuid.UUID]int{},
	}
}

func (f *fakeCommunityRepo) CreateGraph(ctx context.Context, community *entity.Community, topicID uuid.UUID, tagIDs []uuid.UUID, creatorMember *entity.CommunityMember) error {
	for _, c := range f.communities {
		if c.Slug == community.Slug {
			return errors.New("duplicate slug")
		}
	}
	community.ID = uuid.New()
	f.communities[community.ID] = community
	f.topics[community.ID] = topicID
	f.tags[community.ID] = append([]uuid.UUID{}, tagIDs...)
	for _, id := range tagIDs {
		f.tagUsage[id]++
	}
	creatorMember.CommunityID = community.ID
	return nil
}

func (f *fakeCommunityRepo) UpdateGraph(ctx context.Context, community *entity.Community, topicID *uuid.UUID, addTagIDs, removeTagIDs []uuid.UUID) error {
	f.communities[community.ID] = community
	if topicID != nil {
		f.topics[community.ID] = *topicID
	}
	current := f.tags[community.ID]
	for _, id := range addTagIDs {
		current = append(current, id)
		f.tagUsage[id]++
	}
	for _, id := range removeTagIDs {
		for i, cur := range current {
			if cur == id {
				current = append(current[:i], current[i+1:]...)
				break
			}
		}
		if f.tagUsage[id] > 0 {
			f.tagUsage[id]--
		}
	}
	f.tags[community.ID] = current
	return nil
}

func (f *fakeCommunityRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Community, error) {
	c, ok := f.communities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCommunityRepo) FindBySlug(ctx context.Context, slug string) (*entity.Community, error) {
	for _, c := range f.communities {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCommunityRepo) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	for id, c := range f.communities {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCommunityRepo) FindPublished(ctx context.Context, search, communityType string, offset, limit int) ([]*entity.Community, int64, error) {
	var out []*entity.Community
	for _, c := range f.communities {
		if c.Status == entity.CommunityStatusPublished {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCommunityRepo) FindByTopic(ctx context.Context, topicID uuid.UUID) ([]*entity.Community, error) {
	var out []*entity.Community
	for id, t := range f.topics {
		if t == topicID && f.communities[id].Status == entity.CommunityStatusPublished {
			out = append(out, f.communities[id])
		}
	}
	return out, nil
}

func (f *fakeCommunityRepo) TagIDsByCommunity(ctx context.Context, communityID uuid.UUID) ([]uuid.UUID, error) {
	return append([]uuid.UUID{}, f.tags[communityID]...), nil
}

func (f *fakeCommunityRepo) TagsByCommunity(ctx context.Context, communityID uuid.UUID) ([]*entity.Tag, error) {
	var out []*entity.Tag
	for _, id := range f.tags[communityID] {
		out = append(out, &entity.Tag{ID: id, IsActive: true})
	}
	return out, nil
}

func (f *fakeCommunityRepo) ListCommunityCounters(ctx context.Context, lastID uuid.UUID, batchSize int) ([]repository.CounterPair, error) {
	return nil, nil
}

func (f *fakeCommunityRepo) CountActiveMembers(ctx context.Context, communityID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeCommunityRepo) SetActiveMembersCount(ctx context.Context, communityID uuid.UUID, count int64) error {
	return nil
}

func (f *fakeCommunityRepo) ListTagCounters(ctx context.Context, lastID uuid.UUID, batchSize int) ([]repository.CounterPair, error) {
	return nil, nil
}

func (f *fakeCommunityRepo) CountTagUsage(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return int64(f.tagUsage[tagID]), nil
}

func (f *fakeCommunityRepo) SetTagUsageCount(ctx context.Context, tagID uuid.UUID, count int64) error {
	return nil
}

type memberKey struct {
	community uuid.UUID
	user      uuid.UUID
}

type fakeMemberRepo struct {
	repo    *fakeCommunityRepo
	members map[memberKey]*entity.CommunityMember
}

func newFakeMemberRepo(repo *fakeCommunityRepo) *fakeMemberRepo {
	return &fakeMemberRepo{repo: repo, members: map[memberKey]*entity.CommunityMember{}}
}

func (f *fakeMemberRepo) Find(ctx context.Context, communityID, userID uuid.UUID) (*entity.CommunityMember, error) {
	m, ok := f.members[memberKey{communityID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeMemberRepo) Join(ctx context.Context, communityID, userID uuid.UUID) (*entity.CommunityMember, error) {
	key := memberKey{communityID, userID}
	if _, exists := f.members[key]; exists {
		return nil, fmt.Errorf("already a member of this community: %w", apperror.ErrConflict)
	}
	community := f.repo.communities[communityID]
	if community.MaxMembers != nil && community.ActiveMembersCount >= *community.MaxMembers {
		return nil, fmt.Errorf("community is full: %w", apperror.ErrConflict)
	}

	member := &entity.CommunityMember{
		ID:          uuid.New(),
		CommunityID: communityID,
		UserID:      userID,
		Status:      entity.MemberStatusActive,
		MemberRank:  entity.MemberRankNewbie,
	}
	f.members[key] = member
	community.ActiveMembersCount++
	return member, nil
}

func (f *fakeMemberRepo) Leave(ctx context.Context, communityID, userID uuid.UUID) error {
	key := memberKey{communityID, userID}
	if _, exists := f.members[key]; !exists {
		return fmt.Errorf("not a member of this community: %w", apperror.ErrConflict)
	}
	delete(f.members, key)
	community := f.repo.communities[communityID]
	if community.ActiveMembersCount > 0 {
		community.ActiveMembersCount--
	}
	return nil
}

func (f *fakeMemberRepo) ActiveCommunityIDSet(ctx context.Context, userID uuid.UUID, communityIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	joined := make(map[uuid.UUID]bool)
	for _, id := range communityIDs {
		if _, ok := f.members[memberKey{id, userID}]; ok {
			joined[id] = true
		}
	}
	return joined, nil
}

func (f *fakeMemberRepo) FindByCommunity(ctx context.Context, communityID uuid.UUID, offset, limit int) ([]*entity.CommunityMember, int64, error) {
	var out []*entity.CommunityMember
	for key, m := range f.members {
		if key.community == communityID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

type fakeTopicRepo struct {
	topics map[uuid.UUID]*entity.Topic
}

func (f *fakeTopicRepo) Create(ctx context.Context, topic *entity.Topic) error { return nil }

func (f *fakeTopicRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error) {
	t, ok := f.topics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTopicRepo) FindByInterestAndSlug(ctx context.Context, interestID uuid.UUID, slug string) (*entity.Topic, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTopicRepo) FindAll(ctx context.Context, search string) ([]*entity.Topic, error) {
	return nil, nil
}

func (f *fakeTopicRepo) FindActiveByInterest(ctx context.Context, interestID uuid.UUID) ([]topicDto.TopicWithCommunityCount, error) {
	return nil, nil
}

func (f *fakeTopicRepo) Update(ctx context.Context, topic *entity.Topic) error { return nil }
func (f *fakeTopicRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }

type fakeTagRepo struct {
	tags map[uuid.UUID]*entity.Tag
}

func (f *fakeTagRepo) Create(ctx context.Context, tag *entity.Tag) error { return nil }

func (f *fakeTagRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error) {
	t, ok := f.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTagRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Tag, error) {
	var out []*entity.Tag
	for _, id := range ids {
		if t, ok := f.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTagRepo) FindByTopicAndSlug(ctx context.Context, topicID *uuid.UUID, slug string) (*entity.Tag, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTagRepo) FindAll(ctx context.Context, search string) ([]*entity.Tag, error) {
	return nil, nil
}

func (f *fakeTagRepo) Update(ctx context.Context, tag *entity.Tag) error { return nil }
func (f *fakeTagRepo) Delete(ctx context.Context, id uuid.UUID) error    { return nil }

type joinEvent struct {
	ownerID uuid.UUID
	actorID uuid.UUID
}

type fakeNotifier struct {
	joins []joinEvent
}

func (f *fakeNotifier) NotifyMemberJoined(ctx context.Context, ownerID, actorID, communityID uuid.UUID, communityName string) error {
	f.joins = append(f.joins, joinEvent{ownerID: ownerID, actorID: actorID})
	return nil
}
