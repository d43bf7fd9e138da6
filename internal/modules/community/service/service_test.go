package community

import (
	"context"
	"errors"
	"testing"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/community/dto"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
)

type testEnv struct {
	svc       *communityService
	repo      *fakeCommunityRepo
	members   *fakeMemberRepo
	topics    *fakeTopicRepo
	tags      *fakeTagRepo
	notifier  *fakeNotifier
	interest  uuid.UUID
	topic     uuid.UUID
	tagA      uuid.UUID
	tagB      uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	interestID := uuid.New()
	topicID := uuid.New()
	tagA := uuid.New()
	tagB := uuid.New()

	repo := newFakeCommunityRepo()
	members := newFakeMemberRepo(repo)
	topics := &fakeTopicRepo{topics: map[uuid.UUID]*entity.Topic{
		topicID: {ID: topicID, InterestID: interestID, Name: "Software Engineering", Slug: "software-engineering", IsActive: true},
	}}
	tags := &fakeTagRepo{tags: map[uuid.UUID]*entity.Tag{
		tagA: {ID: tagA, Name: "Go", Slug: "go", IsActive: true},
		tagB: {ID: tagB, Name: "Rust", Slug: "rust", IsActive: true},
	}}
	notifier := &fakeNotifier{}

	svc := NewCommunityService(repo, members, topics, tags, nil, nil, nil, notifier, 0).(*communityService)

	return &testEnv{
		svc:      svc,
		repo:     repo,
		members:  members,
		topics:   topics,
		tags:     tags,
		notifier: notifier,
		interest: interestID,
		topic:    topicID,
		tagA:     tagA,
		tagB:     tagB,
	}
}

func (e *testEnv) createRequest() dto.CreateCommunityRequest {
	return dto.CreateCommunityRequest{
		Name:        "Gophers United",
		Description: "A community for Go developers",
		InterestID:  e.interest.String(),
		TopicID:     e.topic.String(),
		Type:        entity.CommunityTypeProfessional,
		Visibility:  entity.VisibilityPublic,
		JoinPolicy:  entity.JoinPolicyOpen,
		TagIDs:      []string{e.tagA.String()},
	}
}

func TestCreateCommunity(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	resp, err := env.svc.Create(context.Background(), owner, env.createRequest(), dto.CommunityImages{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if resp.Slug != "gophers-united" {
		t.Errorf("slug = %q, want gophers-united", resp.Slug)
	}
	if resp.ActiveMembersCount != 1 {
		t.Errorf("active_members_count = %d, want 1 (the creator)", resp.ActiveMembersCount)
	}
	if !resp.Joined {
		t.Error("creator response should have joined=true")
	}
	if resp.OwnerID != owner || resp.CreatedBy != owner {
		t.Error("owner and created_by should be the creator")
	}
	if resp.Status != entity.CommunityStatusPublished {
		t.Errorf("status = %q, want published", resp.Status)
	}
	if got := env.repo.tagUsage[env.tagA]; got != 1 {
		t.Errorf("tag usage = %d, want 1", got)
	}
}

func TestCreateCommunitySlugProbing(t *testing.T) {
	env := newTestEnv(t)

	for i, want := range []string{"gophers-united", "gophers-united-1", "gophers-united-2"} {
		resp, err := env.svc.Create(context.Background(), uuid.New(), env.createRequest(), dto.CommunityImages{})
		if err != nil {
			t.Fatalf("Create #%d returned error: %v", i, err)
		}
		if resp.Slug != want {
			t.Errorf("Create #%d slug = %q, want %q", i, resp.Slug, want)
		}
	}
}

func TestCreateCommunityUnsluggableName(t *testing.T) {
	env := newTestEnv(t)

	// Names that slugify to nothing would mint an empty, unroutable slug.
	for _, name := range []string{"!!!", "日本語", "---"} {
		req := env.createRequest()
		req.Name = name

		_, err := env.svc.Create(context.Background(), uuid.New(), req, dto.CommunityImages{})
		var validationErr *apperror.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("name %q: expected ValidationError, got %v", name, err)
		}
		if _, ok := validationErr.Fields["name"]; !ok {
			t.Errorf("name %q: expected name violation, got %v", name, validationErr.Fields)
		}
	}
}

func TestCreateCommunityTopicMismatch(t *testing.T) {
	env := newTestEnv(t)

	req := env.createRequest()
	req.InterestID = uuid.New().String() // not the topic's interest

	_, err := env.svc.Create(context.Background(), uuid.New(), req, dto.CommunityImages{})
	var validationErr *apperror.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["topic_id"]; !ok {
		t.Errorf("expected topic_id violation, got %v", validationErr.Fields)
	}
}

func TestCreateCommunityUnknownTag(t *testing.T) {
	env := newTestEnv(t)

	req := env.createRequest()
	req.TagIDs = []string{uuid.New().String()}

	_, err := env.svc.Create(context.Background(), uuid.New(), req, dto.CommunityImages{})
	var validationErr *apperror.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateCommunityOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	created, err := env.svc.Create(context.Background(), owner, env.createRequest(), dto.CommunityImages{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	name := "Renamed"
	_, err = env.svc.Update(context.Background(), uuid.New(), created.ID, dto.UpdateCommunityRequest{Name: &name}, dto.CommunityImages{})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	_, err = env.svc.Update(context.Background(), owner, uuid.New(), dto.UpdateCommunityRequest{Name: &name}, dto.CommunityImages{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing community, got %v", err)
	}
}

func TestUpdateCommunityRenameKeepsOwnSlug(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	created, err := env.svc.Create(context.Background(), owner, env.createRequest(), dto.CommunityImages{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Same name again: the probe must exclude the community's own row and
	// not suffix its slug.
	name := "Gophers United"
	updated, err := env.svc.Update(context.Background(), owner, created.ID, dto.UpdateCommunityRequest{Name: &name}, dto.CommunityImages{})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Slug != "gophers-united" {
		t.Errorf("slug = %q, want gophers-united", updated.Slug)
	}

	name = "Rustaceans"
	updated, err = env.svc.Update(context.Background(), owner, created.ID, dto.UpdateCommunityRequest{Name: &name}, dto.CommunityImages{})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Slug != "rustaceans" {
		t.Errorf("slug = %q, want rustaceans", updated.Slug)
	}
}

func TestUpdateCommunityTagDiff(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	created, err := env.svc.Create(context.Background(), owner, env.createRequest(), dto.CommunityImages{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Replace tagA with tagB: usage moves from one to the other.
	tagIDs := []string{env.tagB.String()}
	if _, err := env.svc.Update(context.Background(), owner, created.ID, dto.UpdateCommunityRequest{TagIDs: &tagIDs}, dto.CommunityImages{}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if got := env.repo.tagUsage[env.tagA]; got != 0 {
		t.Errorf("removed tag usage = %d, want 0", got)
	}
	if got := env.repo.tagUsage[env.tagB]; got != 1 {
		t.Errorf("added tag usage = %d, want 1", got)
	}

	// Submitting the same set again must not touch the counters.
	if _, err := env.svc.Update(context.Background(), owner, created.ID, dto.UpdateCommunityRequest{TagIDs: &tagIDs}, dto.CommunityImages{}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got := env.repo.tagUsage[env.tagB]; got != 1 {
		t.Errorf("unchanged tag usage = %d, want 1", got)
	}
}

func TestUpdateCommunityCapacityBelowMembers(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	created, err := env.svc.Create(context.Background(), owner, env.createRequest(), dto.CommunityImages{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := env.svc.Join(context.Background(), uuid.New(), created.ID); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}

	tooSmall := 1
	_, err = env.svc.Update(context.Background(), owner, created.ID, dto.UpdateCommunityRequest{MaxMembers: &tooSmall}, dto.CommunityImages{})
	var validationErr *apperror.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestHelperDiffUUIDSets(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	add, remove := diffUUIDSets([]uuid.UUID{a, b, c}, []uuid.UUID{b, c, d})
	if len(add) != 1 || add[0] != d {
		t.Errorf("add = %v, want [%v]", add, d)
	}
	if len(remove) != 1 || remove[0] != a {
		t.Errorf("remove = %v, want [%v]", remove, a)
	}

	add, remove = diffUUIDSets(nil, nil)
	if len(add) != 0 || len(remove) != 0 {
		t.Error("empty diff should produce no changes")
	}
}

func TestHelperParseUUIDs(t *testing.T) {
	id := uuid.New()

	parsed, err := parseUUIDs([]string{id.String(), id.String()})
	if err != nil {
		t.Fatalf("parseUUIDs returned error: %v", err)
	}
	if len(parsed) != 1 {
		t.Errorf("duplicates should collapse, got %d ids", len(parsed))
	}

	if _, err := parseUUIDs([]string{"nope"}); err == nil {
		t.Error("expected error for invalid uuid")
	}
}
