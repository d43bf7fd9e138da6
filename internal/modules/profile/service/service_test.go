package profile

import (
	"context"
	"errors"
	"testing"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/profile/dto"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.FindByIDWithCollections(ctx, parsed)
}

func (f *fakeUserRepo) FindByIDWithCollections(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// Hand out a copy so callers mutating the result do not corrupt the store,
	// matching a repository that hydrates a fresh row per query.
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsernameWithCollections(ctx context.Context, username string) (*entity.User, error) {
	return f.FindByUsername(ctx, username)
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return &entity.Role{ID: 1, Name: name}, nil
}

// fakeProfileRepo records the collections the service hands over so the
// replace-set conversion can be asserted.
type fakeProfileRepo struct {
	savedUser   *entity.User
	educations  *[]entity.Education
	experiences *[]entity.Experience
	socialLinks *[]entity.SocialLink
}

func (f *fakeProfileRepo) UpdateProfile(ctx context.Context, user *entity.User, educations *[]entity.Education, experiences *[]entity.Experience, socialLinks *[]entity.SocialLink) error {
	f.savedUser = user
	f.educations = educations
	f.experiences = experiences
	f.socialLinks = socialLinks
	return nil
}

type stubFollowRepo struct{}

func (stubFollowRepo) CreateEdge(ctx context.Context, follow *entity.Follow) error { return nil }
func (stubFollowRepo) Find(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error) {
	return nil, gorm.ErrRecordNotFound
}
func (stubFollowRepo) Delete(ctx context.Context, followerID, followedID uuid.UUID) error {
	return nil
}
func (stubFollowRepo) Accept(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error) {
	return nil, nil
}
func (stubFollowRepo) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error   { return nil }
func (stubFollowRepo) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error { return nil }
func (stubFollowRepo) Followers(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error) {
	return nil, nil
}
func (stubFollowRepo) Following(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error) {
	return nil, nil
}
func (stubFollowRepo) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 3, nil
}
func (stubFollowRepo) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 5, nil
}

func newProfileTestService() (ProfileService, *fakeProfileRepo, *fakeUserRepo) {
	users := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	repo := &fakeProfileRepo{}
	return NewProfileService(repo, users, stubFollowRepo{}, nil), repo, users
}

func seedUser(users *fakeUserRepo, username string, isPrivate bool) *entity.User {
	user := &entity.User{
		ID:        uuid.New(),
		Username:  username,
		FullName:  "Test User",
		IsPrivate: isPrivate,
		Educations: []entity.Education{
			{ID: uuid.New(), School: "State University"},
		},
	}
	users.users[user.ID] = user
	return user
}

func TestUpdateScalarFields(t *testing.T) {
	svc, repo, users := newProfileTestService()
	user := seedUser(users, "alice", false)

	headline := "Platform Engineer"
	resp, err := svc.Update(context.Background(), user.ID, dto.UpdateProfileRequest{Headline: &headline})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if repo.savedUser.Headline == nil || *repo.savedUser.Headline != headline {
		t.Error("headline was not applied")
	}
	if repo.savedUser.FullName != "Test User" {
		t.Error("untouched fields must survive a partial update")
	}
	if repo.educations != nil {
		t.Error("absent collections must stay untouched (nil)")
	}
	if resp.Network.FollowersCount != 3 || resp.Network.FollowingCount != 5 {
		t.Errorf("network stats = %+v", resp.Network)
	}
}

func TestUpdateCollectionsReplaceSet(t *testing.T) {
	svc, repo, users := newProfileTestService()
	user := seedUser(users, "alice", false)
	existingID := user.Educations[0].ID.String()

	req := dto.UpdateProfileRequest{
		Educations: &[]dto.EducationInput{
			{ID: &existingID, School: "State University (renamed)"},
			{School: "Online Academy"},
		},
		SocialLinks: &[]dto.SocialLinkInput{},
	}

	if _, err := svc.Update(context.Background(), user.ID, req); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if repo.educations == nil {
		t.Fatal("educations should be handed to the repository")
	}
	rows := *repo.educations
	if len(rows) != 2 {
		t.Fatalf("expected 2 education rows, got %d", len(rows))
	}
	if rows[0].ID.String() != existingID {
		t.Error("row with id should keep the id for an update")
	}
	if rows[1].ID != uuid.Nil {
		t.Error("row without id should be created fresh")
	}
	for _, row := range rows {
		if row.UserID != user.ID {
			t.Error("ownership must be stamped on every row")
		}
	}

	// Empty slice means clear, nil means leave alone.
	if repo.socialLinks == nil || len(*repo.socialLinks) != 0 {
		t.Error("empty social_links should clear the collection")
	}
	if repo.experiences != nil {
		t.Error("absent experiences should stay nil")
	}
}

func TestGetByUsernamePrivacy(t *testing.T) {
	svc, _, users := newProfileTestService()
	private := seedUser(users, "carol", true)

	// Anonymous viewers see the profile but not the collections.
	resp, err := svc.GetByUsername(context.Background(), "carol", nil)
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if resp.Educations != nil {
		t.Error("private profile should hide educations from anonymous viewers")
	}

	// The owner always sees everything.
	resp, err = svc.GetByUsername(context.Background(), "carol", &private.ID)
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if len(resp.Educations) != 1 {
		t.Error("owner should see their own collections")
	}

	if _, err := svc.GetByUsername(context.Background(), "nobody", nil); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown username: expected ErrNotFound, got %v", err)
	}
}
