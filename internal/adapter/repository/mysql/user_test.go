package mysql

import (
	"context"
	"errors"
	"testing"

	userDomain "innovation-portal/internal/domain/user"
	"innovation-portal/internal/testutil/dbtest"
	"innovation-portal/pkg/id"
)

func makeUser(email string, role userDomain.Role, lob string) *userDomain.User {
	return &userDomain.User{
		UserID:         id.NewID32(),
		Email:          email,
		Name:           "Test User",
		PasswordHash:   "x",
		Role:           role,
		LineOfBusiness: lob,
	}
}

func TestUser_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	u := makeUser("a@example.com", userDomain.RoleApplicant, "retail")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByUserID(ctx, u.UserID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.Email != "a@example.com" || got.Role != userDomain.RoleApplicant {
		t.Errorf("unexpected user: %+v", got)
	}

	got, err = repo.GetByEmail(ctx, "  A@Example.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.UserID != u.UserID {
		t.Errorf("GetByEmail returned %s, want %s", got.UserID, u.UserID)
	}
}

func TestUser_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	if err := repo.Create(ctx, makeUser("dup@example.com", userDomain.RoleApplicant, "")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, makeUser("dup@example.com", userDomain.RoleApplicant, ""))
	if !errors.Is(err, userDomain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUser_NotFound(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	if _, err := repo.GetByUserID(ctx, "nope"); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("GetByUserID: want ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nope@example.com"); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("GetByEmail: want ErrNotFound, got %v", err)
	}
	if err := repo.UpdateRole(ctx, "nope", userDomain.RoleAdmin); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("UpdateRole: want ErrNotFound, got %v", err)
	}
}

func TestUser_UpdateRoleAndList(t *testing.T) {
	repo := NewUserRepository(dbtest.Open(t))
	ctx := context.Background()

	a := makeUser("a@example.com", userDomain.RoleApplicant, "retail")
	b := makeUser("b@example.com", userDomain.RoleApplicant, "retail")
	c := makeUser("c@example.com", userDomain.RoleApplicant, "wholesale")
	for _, u := range []*userDomain.User{a, b, c} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.UpdateRole(ctx, b.UserID, userDomain.RoleReviewer); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	reviewers, err := repo.List(ctx, userDomain.ListFilter{Role: userDomain.RoleReviewer})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reviewers) != 1 || reviewers[0].UserID != b.UserID {
		t.Fatalf("unexpected reviewers: %+v", reviewers)
	}

	retail, err := repo.List(ctx, userDomain.ListFilter{LineOfBusiness: "retail"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(retail) != 2 {
		t.Fatalf("retail users = %d, want 2", len(retail))
	}

	page, err := repo.List(ctx, userDomain.ListFilter{Limit: 1, Offset: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 1 || page[0].UserID != c.UserID {
		t.Fatalf("unexpected page: %+v", page)
	}
}
