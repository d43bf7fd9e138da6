package follow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type edgeKey struct {
	follower uuid.UUID
	followed uuid.UUID
}

type fakeFollowRepo struct {
	edges map[edgeKey]*entity.Follow
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: map[edgeKey]*entity.Follow{}}
}

func (f *fakeFollowRepo) CreateEdge(ctx context.Context, follow *entity.Follow) error {
	key := edgeKey{follow.FollowerID, follow.FollowedID}
	if existing, ok := f.edges[key]; ok {
		if existing.BlockedAt != nil {
			return fmt.Errorf("cannot follow this user: %w", apperror.ErrForbidden)
		}
		return fmt.Errorf("already following this user: %w", apperror.ErrConflict)
	}
	if reverse, ok := f.edges[edgeKey{follow.FollowedID, follow.FollowerID}]; ok && reverse.BlockedAt != nil {
		return fmt.Errorf("cannot follow this user: %w", apperror.ErrForbidden)
	}
	follow.ID = uuid.New()
	f.edges[key] = follow
	return nil
}

func (f *fakeFollowRepo) Find(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error) {
	edge, ok := f.edges[edgeKey{followerID, followedID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return edge, nil
}

func (f *fakeFollowRepo) Delete(ctx context.Context, followerID, followedID uuid.UUID) error {
	key := edgeKey{followerID, followedID}
	edge, ok := f.edges[key]
	if !ok || edge.BlockedAt != nil {
		return fmt.Errorf("not following this user: %w", apperror.ErrConflict)
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeFollowRepo) Accept(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error) {
	edge, ok := f.edges[edgeKey{followerID, followedID}]
	if !ok {
		return nil, fmt.Errorf("follow request not found: %w", apperror.ErrNotFound)
	}
	if edge.IsAccepted {
		return nil, fmt.Errorf("follow request already accepted: %w", apperror.ErrConflict)
	}
	edge.IsAccepted = true
	return edge, nil
}

func (f *fakeFollowRepo) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	now := time.Now()
	key := edgeKey{blockerID, blockedID}
	if edge, ok := f.edges[key]; ok {
		if edge.BlockedAt != nil {
			return fmt.Errorf("user is already blocked: %w", apperror.ErrConflict)
		}
		edge.BlockedAt = &now
		edge.IsAccepted = false
	} else {
		f.edges[key] = &entity.Follow{
			ID:         uuid.New(),
			FollowerID: blockerID,
			FollowedID: blockedID,
			BlockedAt:  &now,
		}
	}

	reverseKey := edgeKey{blockedID, blockerID}
	if reverse, ok := f.edges[reverseKey]; ok && reverse.BlockedAt == nil {
		delete(f.edges, reverseKey)
	}
	return nil
}

func (f *fakeFollowRepo) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	key := edgeKey{blockerID, blockedID}
	edge, ok := f.edges[key]
	if !ok || edge.BlockedAt == nil {
		return fmt.Errorf("user is not blocked: %w", apperror.ErrConflict)
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeFollowRepo) Followers(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error) {
	var out []*entity.Follow
	for _, edge := range f.edges {
		if edge.FollowedID == userID && edge.IsAccepted && edge.BlockedAt == nil {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) Following(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error) {
	var out []*entity.Follow
	for _, edge := range f.edges {
		if edge.FollowerID == userID && edge.IsAccepted && edge.BlockedAt == nil {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	edges, _ := f.Followers(ctx, userID, nil, 0)
	return int64(len(edges)), nil
}

func (f *fakeFollowRepo) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	edges, _ := f.Following(ctx, userID, nil, 0)
	return int64(len(edges)), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	user, ok := f.users[parsed]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByIDWithCollections(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsernameWithCollections(ctx context.Context, username string) (*entity.User, error) {
	return f.FindByUsername(ctx, username)
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return &entity.Role{ID: 1, Name: name}, nil
}

func newFollowTestService() (FollowService, *fakeFollowRepo, *fakeUserRepo) {
	follows := newFakeFollowRepo()
	users := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	return NewFollowService(follows, users, nil), follows, users
}

func addUser(users *fakeUserRepo, isPrivate bool) uuid.UUID {
	id := uuid.New()
	users.users[id] = &entity.User{ID: id, Username: "user-" + id.String()[:8], IsPrivate: isPrivate}
	return id
}

func TestFollowPublicUser(t *testing.T) {
	svc, follows, users := newFollowTestService()
	alice := addUser(users, false)
	bob := addUser(users, false)

	resp, err := svc.Follow(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	if resp.Pending {
		t.Error("follow of a public account should not be pending")
	}
	if !resp.Follow.IsAccepted {
		t.Error("edge should be accepted immediately")
	}
	if len(follows.edges) != 1 {
		t.Errorf("expected 1 edge, got %d", len(follows.edges))
	}
}

func TestFollowPrivateUserPending(t *testing.T) {
	svc, _, users := newFollowTestService()
	alice := addUser(users, false)
	carol := addUser(users, true)

	resp, err := svc.Follow(context.Background(), alice, carol)
	if err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	if !resp.Pending {
		t.Error("follow of a private account should be pending")
	}

	// The target approves the request.
	edge, err := svc.Accept(context.Background(), carol, alice)
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if !edge.IsAccepted {
		t.Error("edge should be accepted after approval")
	}

	// Accepting twice is a conflict.
	if _, err := svc.Accept(context.Background(), carol, alice); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second accept: expected ErrConflict, got %v", err)
	}
}

func TestFollowEdgeCases(t *testing.T) {
	svc, _, users := newFollowTestService()
	alice := addUser(users, false)
	bob := addUser(users, false)

	if _, err := svc.Follow(context.Background(), alice, alice); !errors.Is(err, apperror.ErrBadRequest) {
		t.Errorf("self-follow: expected ErrBadRequest, got %v", err)
	}

	if _, err := svc.Follow(context.Background(), alice, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown target: expected ErrNotFound, got %v", err)
	}

	if _, err := svc.Follow(context.Background(), alice, bob); err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	if _, err := svc.Follow(context.Background(), alice, bob); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate follow: expected ErrConflict, got %v", err)
	}
}

func TestUnfollowHardDeletes(t *testing.T) {
	svc, follows, users := newFollowTestService()
	alice := addUser(users, false)
	bob := addUser(users, false)

	if _, err := svc.Follow(context.Background(), alice, bob); err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	if err := svc.Unfollow(context.Background(), alice, bob); err != nil {
		t.Fatalf("Unfollow returned error: %v", err)
	}
	if len(follows.edges) != 0 {
		t.Errorf("expected edge to be deleted, %d remain", len(follows.edges))
	}

	if err := svc.Unfollow(context.Background(), alice, bob); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("unfollow without edge: expected ErrConflict, got %v", err)
	}
}

func TestBlockSeversAndPrevents(t *testing.T) {
	svc, follows, users := newFollowTestService()
	alice := addUser(users, false)
	bob := addUser(users, false)

	if _, err := svc.Follow(context.Background(), bob, alice); err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}

	if err := svc.Block(context.Background(), alice, bob); err != nil {
		t.Fatalf("Block returned error: %v", err)
	}

	// The reverse follow is gone and a new one is refused.
	if _, ok := follows.edges[edgeKey{bob, alice}]; ok {
		t.Error("block should remove the blocked user's follow")
	}
	if _, err := svc.Follow(context.Background(), bob, alice); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("follow while blocked: expected ErrForbidden, got %v", err)
	}

	if err := svc.Unblock(context.Background(), alice, bob); err != nil {
		t.Fatalf("Unblock returned error: %v", err)
	}
	if _, err := svc.Follow(context.Background(), bob, alice); err != nil {
		t.Errorf("follow after unblock should succeed, got %v", err)
	}
}
