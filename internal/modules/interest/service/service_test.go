package interest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/interest/dto"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeInterestRepo struct {
	interests map[uuid.UUID]*entity.Interest
}

func newFakeInterestRepo() *fakeInterestRepo {
	return &fakeInterestRepo{interests: map[uuid.UUID]*entity.Interest{}}
}

func (f *fakeInterestRepo) Create(ctx context.Context, interest *entity.Interest) error {
	interest.ID = uuid.Must(uuid.NewV7())
	f.interests[interest.ID] = interest
	return nil
}

func (f *fakeInterestRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Interest, error) {
	interest, ok := f.interests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return interest, nil
}

func (f *fakeInterestRepo) FindBySlug(ctx context.Context, slug string) (*entity.Interest, error) {
	for _, i := range f.interests {
		if i.Slug == slug {
			return i, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInterestRepo) FindByName(ctx context.Context, name string) (*entity.Interest, error) {
	for _, i := range f.interests {
		if strings.EqualFold(i.Name, name) {
			return i, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInterestRepo) FindAll(ctx context.Context, search string) ([]*entity.Interest, error) {
	var out []*entity.Interest
	for _, i := range f.interests {
		if search == "" || strings.Contains(strings.ToLower(i.Name), strings.ToLower(search)) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInterestRepo) Update(ctx context.Context, interest *entity.Interest) error {
	f.interests[interest.ID] = interest
	return nil
}

func (f *fakeInterestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.interests, id)
	return nil
}

func TestCreateInterest(t *testing.T) {
	svc := NewInterestService(newFakeInterestRepo())

	created, err := svc.Create(context.Background(), dto.CreateInterestRequest{Name: "Software Engineering"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Slug != "software-engineering" {
		t.Errorf("slug = %q, want software-engineering", created.Slug)
	}
	if !created.IsActive {
		t.Error("interests should default to active")
	}
}

func TestCreateInterestRejectsDuplicates(t *testing.T) {
	svc := NewInterestService(newFakeInterestRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, dto.CreateInterestRequest{Name: "Design"}); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	_, err := svc.Create(ctx, dto.CreateInterestRequest{Name: "Design"})
	var vErr *apperror.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["name"]; !ok {
		t.Errorf("name collision should be reported, fields = %v", vErr.Fields)
	}
	if _, ok := vErr.Fields["slug"]; !ok {
		t.Errorf("slug collision should be reported, fields = %v", vErr.Fields)
	}

	// Different name, same explicit slug.
	slug := "design"
	_, err = svc.Create(ctx, dto.CreateInterestRequest{Name: "Graphic Arts", Slug: &slug})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["slug"]; !ok {
		t.Errorf("explicit slug collision should be reported, fields = %v", vErr.Fields)
	}
}

func TestUpdateInterest(t *testing.T) {
	svc := NewInterestService(newFakeInterestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateInterestRequest{Name: "Finance"})
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}
	other, err := svc.Create(ctx, dto.CreateInterestRequest{Name: "Marketing"})
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	// Renaming without an explicit slug re-derives the slug.
	name := "Personal Finance"
	updated, err := svc.Update(ctx, created.ID, dto.UpdateInterestRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Slug != "personal-finance" {
		t.Errorf("slug = %q, want personal-finance", updated.Slug)
	}

	// Renaming into an existing name is rejected.
	taken := "Marketing"
	_, err = svc.Update(ctx, created.ID, dto.UpdateInterestRequest{Name: &taken})
	var vErr *apperror.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Re-saving the current name is not a self-collision.
	keep := other.Name
	if _, err := svc.Update(ctx, other.ID, dto.UpdateInterestRequest{Name: &keep}); err != nil {
		t.Errorf("identity update should succeed, got %v", err)
	}

	if _, err := svc.Update(ctx, uuid.New(), dto.UpdateInterestRequest{Name: &name}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteInterest(t *testing.T) {
	repo := newFakeInterestRepo()
	svc := NewInterestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateInterestRequest{Name: "Travel"})
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("deleted interest should be gone, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("double delete: expected ErrNotFound, got %v", err)
	}
}
