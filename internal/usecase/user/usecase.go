package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"innovation-portal/internal/domain/apperr"
	"innovation-portal/internal/domain/authz"
	domainUser "innovation-portal/internal/domain/user"
	"innovation-portal/pkg/id"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotRegistered = errors.New("bootstrap admin is not registered and no password was given")
)

type TokenIssuer interface {
	Issue(userID, email, lob string) (string, time.Time, error)
}

type Usecase struct {
	repo         domainUser.Repository
	tokens       TokenIssuer
	storeTimeout time.Duration
	cost         int
}

func NewUsecase(r domainUser.Repository, tokens TokenIssuer, storeTimeout time.Duration) *Usecase {
	return &Usecase{repo: r, tokens: tokens, storeTimeout: storeTimeout, cost: bcrypt.DefaultCost}
}

func (u *Usecase) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.storeTimeout)
}

// Register always creates an APPLICANT; roles change only through UpdateRole.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	usr, err := u.newUser(in, domainUser.RoleApplicant)
	if err != nil {
		return nil, err
	}

	sctx, cancel := u.storeCtx(ctx)
	defer cancel()
	if err := u.repo.Create(sctx, usr); err != nil {
		return nil, fromStore(err)
	}
	dto := toDTO(usr)
	return &dto, nil
}

func (u *Usecase) newUser(in RegisterInput, role domainUser.Role) (*domainUser.User, error) {
	email := domainUser.NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.Validation("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("email", "is not a valid address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		// bcrypt rejects inputs over 72 bytes
		return nil, apperr.Validation("password", err.Error())
	}
	return &domainUser.User{
		UserID:         id.NewID32(),
		Email:          email,
		Name:           strings.TrimSpace(in.Name),
		PasswordHash:   string(hash),
		Role:           role,
		Department:     strings.TrimSpace(in.Department),
		LineOfBusiness: strings.TrimSpace(in.LineOfBusiness),
	}, nil
}

// EnsureAdmin makes the account with in.Email an ADMIN. An existing account is promoted
// and keeps its password; a missing one is created from in, so in.Password is required
// only then. It is idempotent and safe to run on every start.
func (u *Usecase) EnsureAdmin(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	email := domainUser.NormalizeEmail(in.Email)
	usr, err := u.repo.GetByEmail(sctx, email)
	if errors.Is(err, domainUser.ErrNotFound) {
		if in.Password == "" {
			return nil, apperr.NotFound(ErrAdminNotRegistered)
		}
		usr, err = u.newUser(in, domainUser.RoleAdmin)
		if err != nil {
			return nil, err
		}
		err = u.repo.Create(sctx, usr)
		if errors.Is(err, domainUser.ErrEmailTaken) {
			// another instance created it first
			usr, err = u.repo.GetByEmail(sctx, email)
		}
	}
	if err != nil {
		return nil, fromStore(err)
	}

	if usr.Role != domainUser.RoleAdmin {
		if err := u.repo.UpdateRole(sctx, usr.UserID, domainUser.RoleAdmin); err != nil {
			return nil, fromStore(err)
		}
		usr.Role = domainUser.RoleAdmin
	}
	dto := toDTO(usr)
	return &dto, nil
}

// Login answers UNAUTHORIZED for both an unknown e-mail and a wrong password.
func (u *Usecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	usr, err := u.repo.GetByEmail(sctx, domainUser.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domainUser.ErrNotFound) {
			return nil, apperr.Unauthorized(ErrInvalidCredentials)
		}
		return nil, fromStore(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized(ErrInvalidCredentials)
	}

	tok, exp, err := u.tokens.Issue(usr.UserID, usr.Email, usr.LineOfBusiness)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResult{Token: tok, ExpiresAt: exp, User: toDTO(usr)}, nil
}

func (u *Usecase) Get(ctx context.Context, actor authz.Actor, userID string) (*UserDTO, error) {
	if err := authz.CanViewUser(actor, userID); err != nil {
		return nil, apperr.Forbidden(err)
	}
	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	usr, err := u.repo.GetByUserID(sctx, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	dto := toDTO(usr)
	return &dto, nil
}

func (u *Usecase) List(ctx context.Context, actor authz.Actor, in ListInput) ([]UserDTO, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, apperr.Forbidden(err)
	}
	f := domainUser.ListFilter{LineOfBusiness: strings.TrimSpace(in.LineOfBusiness), Limit: in.Limit, Offset: in.Offset}
	if in.Role != "" {
		r, err := domainUser.ParseRole(in.Role)
		if err != nil {
			return nil, apperr.Validation("role", err.Error())
		}
		f.Role = r
	}
	if in.Limit < 0 || in.Offset < 0 {
		return nil, apperr.Validation("limit", "limit and offset must not be negative")
	}

	sctx, cancel := u.storeCtx(ctx)
	defer cancel()
	rows, err := u.repo.List(sctx, f)
	if err != nil {
		return nil, fromStore(err)
	}
	out := make([]UserDTO, 0, len(rows))
	for n := range rows {
		out = append(out, toDTO(&rows[n]))
	}
	return out, nil
}

// UpdateRole: admin only, never on oneself.
func (u *Usecase) UpdateRole(ctx context.Context, actor authz.Actor, userID, role string) (*UserDTO, error) {
	r, err := domainUser.ParseRole(role)
	if err != nil {
		return nil, apperr.Validation("role", err.Error())
	}
	if err := authz.CanChangeRole(actor, userID); err != nil {
		return nil, apperr.Forbidden(err)
	}

	sctx, cancel := u.storeCtx(ctx)
	defer cancel()
	if err := u.repo.UpdateRole(sctx, userID, r); err != nil {
		return nil, fromStore(err)
	}
	usr, err := u.repo.GetByUserID(sctx, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	dto := toDTO(usr)
	return &dto, nil
}

func fromStore(err error) error {
	switch {
	case errors.Is(err, domainUser.ErrNotFound):
		return apperr.NotFound(err)
	case errors.Is(err, domainUser.ErrEmailTaken):
		return apperr.Conflict(err)
	}
	return apperr.Store(err)
}
