package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"innovation-portal/internal/adapter/repository/mysql"
	"innovation-portal/internal/domain/apperr"
	"innovation-portal/internal/domain/authz"
	domainUser "innovation-portal/internal/domain/user"
	"innovation-portal/internal/testutil/dbtest"
	"innovation-portal/internal/testutil/usermock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeIssuer struct {
	gotUserID string
	err       error
}

func (f *fakeIssuer) Issue(userID, email, lob string) (string, time.Time, error) {
	f.gotUserID = userID
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "tok-" + userID, time.Unix(1700000000, 0).UTC(), nil
}

func newSQLite(t *testing.T) (*Usecase, *mysql.UserRepository, *fakeIssuer) {
	repo := mysql.NewUserRepository(dbtest.Open(t))
	iss := &fakeIssuer{}
	uc := NewUsecase(repo, iss, time.Second)
	uc.cost = bcrypt.MinCost
	return uc, repo, iss
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _, iss := newSQLite(t)
	ctx := context.Background()

	u, err := uc.Register(ctx, RegisterInput{
		Email: "  Alice@Example.com ", Name: "Alice", Password: "correct-horse",
		Department: "R&D", LineOfBusiness: "retail",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, string(domainUser.RoleApplicant), u.Role)
	assert.Len(t, u.UserID, 32)

	res, err := uc.Login(ctx, "ALICE@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "tok-"+u.UserID, res.Token)
	assert.Equal(t, u.UserID, iss.gotUserID)
	assert.Equal(t, "retail", res.User.LineOfBusiness)
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	uc, _, _ := newSQLite(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	_, err = uc.Register(ctx, RegisterInput{Email: "A@EXAMPLE.COM", Password: "password2"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	uc, _, _ := newSQLite(t)
	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing email", RegisterInput{Password: "password1"}, "email"},
		{"bad email", RegisterInput{Email: "nope", Password: "password1"}, "email"},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tt.in)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	uc, _, _ := newSQLite(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, "a@example.com", "wrong-password")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Login(ctx, "nobody@example.com", "password1")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLogin_StoreUnavailable(t *testing.T) {
	repo := &usermock.Repo{GetByEmailFn: func(context.Context, string) (*domainUser.User, error) {
		return nil, context.DeadlineExceeded
	}}
	uc := NewUsecase(repo, &fakeIssuer{}, time.Second)

	_, err := uc.Login(context.Background(), "a@example.com", "password1")
	assert.Equal(t, apperr.KindStoreUnavailable, apperr.KindOf(err))
	assert.True(t, apperr.Retryable(err))
}

func TestLogin_IssuerFailureIsInternal(t *testing.T) {
	uc, _, iss := newSQLite(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	iss.err = errors.New("signing failed")
	_, err = uc.Login(ctx, "a@example.com", "password1")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestUpdateRole(t *testing.T) {
	uc, repo, _ := newSQLite(t)
	ctx := context.Background()

	target, err := uc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "password1"})
	require.NoError(t, err)
	admin := authz.Actor{ID: "admin-1", Role: domainUser.RoleAdmin}

	got, err := uc.UpdateRole(ctx, admin, target.UserID, "reviewer")
	require.NoError(t, err)
	assert.Equal(t, string(domainUser.RoleReviewer), got.Role)

	stored, err := repo.GetByUserID(ctx, target.UserID)
	require.NoError(t, err)
	assert.Equal(t, domainUser.RoleReviewer, stored.Role)

	tests := []struct {
		name   string
		actor  authz.Actor
		userID string
		role   string
		kind   apperr.Kind
	}{
		{"bad role", admin, target.UserID, "OWNER", apperr.KindValidation},
		{"not admin", authz.Actor{ID: "r", Role: domainUser.RoleReviewer}, target.UserID, "ADMIN", apperr.KindForbidden},
		{"self change", admin, admin.ID, "APPLICANT", apperr.KindForbidden},
		{"unknown user", admin, "missing", "ADMIN", apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.UpdateRole(ctx, tt.actor, tt.userID, tt.role)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestEnsureAdmin_CreatesThenUnlocksAdministration(t *testing.T) {
	uc, repo, _ := newSQLite(t)
	ctx := context.Background()

	_, err := uc.EnsureAdmin(ctx, RegisterInput{Email: "root@example.com"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.ErrorIs(t, err, ErrAdminNotRegistered)

	got, err := uc.EnsureAdmin(ctx, RegisterInput{Email: " Root@Example.com", Name: "Root", Password: "bootstrap-pass"})
	require.NoError(t, err)
	assert.Equal(t, string(domainUser.RoleAdmin), got.Role)
	assert.Equal(t, "root@example.com", got.Email)

	// a second start is a no-op and leaves the password alone
	again, err := uc.EnsureAdmin(ctx, RegisterInput{Email: "root@example.com", Password: "other-password"})
	require.NoError(t, err)
	assert.Equal(t, got.UserID, again.UserID)
	_, err = uc.Login(ctx, "root@example.com", "bootstrap-pass")
	require.NoError(t, err)

	// the bootstrapped admin can promote a fresh registrant
	bob, err := uc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "password1"})
	require.NoError(t, err)
	admin := authz.Actor{ID: got.UserID, Role: domainUser.RoleAdmin}
	_, err = uc.UpdateRole(ctx, admin, bob.UserID, "REVIEWER")
	require.NoError(t, err)
	stored, err := repo.GetByUserID(ctx, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, domainUser.RoleReviewer, stored.Role)
}

func TestEnsureAdmin_PromotesExistingAccount(t *testing.T) {
	uc, repo, _ := newSQLite(t)
	ctx := context.Background()

	reg, err := uc.Register(ctx, RegisterInput{Email: "lead@example.com", Password: "password1"})
	require.NoError(t, err)

	got, err := uc.EnsureAdmin(ctx, RegisterInput{Email: "LEAD@example.com"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, got.UserID)
	assert.Equal(t, string(domainUser.RoleAdmin), got.Role)

	stored, err := repo.GetByUserID(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Equal(t, domainUser.RoleAdmin, stored.Role)
}

func TestEnsureAdmin_ShortPasswordIsValidation(t *testing.T) {
	uc, _, _ := newSQLite(t)
	_, err := uc.EnsureAdmin(context.Background(), RegisterInput{Email: "root@example.com", Password: "short"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "password", apperr.FieldOf(err))
}

func TestGetAndList(t *testing.T) {
	uc, _, _ := newSQLite(t)
	ctx := context.Background()

	a, err := uc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", LineOfBusiness: "retail"})
	require.NoError(t, err)
	_, err = uc.Register(ctx, RegisterInput{Email: "b@example.com", Password: "password1", LineOfBusiness: "sme"})
	require.NoError(t, err)

	self := authz.Actor{ID: a.UserID, Role: domainUser.RoleApplicant}
	got, err := uc.Get(ctx, self, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = uc.Get(ctx, self, "someone-else")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = uc.List(ctx, self, ListInput{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	admin := authz.Actor{ID: "admin-1", Role: domainUser.RoleAdmin}
	all, err := uc.List(ctx, admin, ListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	retail, err := uc.List(ctx, admin, ListInput{LineOfBusiness: "retail", Role: "applicant"})
	require.NoError(t, err)
	require.Len(t, retail, 1)
	assert.Equal(t, a.UserID, retail[0].UserID)

	_, err = uc.List(ctx, admin, ListInput{Role: "boss"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
