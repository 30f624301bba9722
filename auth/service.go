// Package auth implements the register/login/current-user workflow on top of
// the credential store, the password hasher, and the token service.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scribely/scribely/auth/jwt"
	"github.com/scribely/scribely/auth/password"
	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/logger"
	"github.com/scribely/scribely/store"
	"github.com/scribely/scribely/validation"
)

// AccountStore is the credential persistence contract the workflow consumes.
// Find methods return nil (without error) when no account matches; Create
// reports a duplicate email as an AlreadyExists application error.
type AccountStore interface {
	Create(ctx context.Context, account *store.Account) error
	FindByEmail(ctx context.Context, email string) (*store.Account, error)
	FindByID(ctx context.Context, id string) (*store.Account, error)
}

// PublicAccount is the externally visible projection of an account.
// The password hash has no field here, so it can never leak into a response.
type PublicAccount struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service orchestrates the authentication workflow.
type Service struct {
	accounts AccountStore
	hasher   password.Hasher
	tokens   *jwt.Service
	log      *logger.Logger
}

// NewService creates the auth workflow service.
func NewService(accounts AccountStore, hasher password.Hasher, tokens *jwt.Service, log *logger.Logger) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		log:      log.WithComponent("auth"),
	}
}

// credentials carries the validation policy for both register and login input:
// a well-formed email and an 8-100 character password.
type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// normalizeEmail canonicalizes an email for storage and lookup.
// Lowercasing happens in exactly this one place so uniqueness cannot be
// sidestepped by case variations.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account. The email is canonicalized, the password is
// hashed with a per-call random salt, and the plaintext is never stored,
// compared, or logged along the way.
func (s *Service) Register(ctx context.Context, email, plaintext string) (*PublicAccount, error) {
	email = normalizeEmail(email)
	if err := validation.Validate(credentials{Email: email, Password: plaintext}); err != nil {
		return nil, err
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("account")
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, apperrors.InvalidInput("password", "password is too long for the configured hashing algorithm")
		}
		return nil, apperrors.Internal(err)
	}

	account := &store.Account{Email: email, PasswordHash: hash}
	if err := s.accounts.Create(ctx, account); err != nil {
		// A concurrent registration for the same email surfaces here as the
		// store's duplicate error; it maps to the same condition as the
		// pre-check above.
		return nil, err
	}

	s.log.Info("Account registered", map[string]interface{}{
		logger.FieldAccountID: account.ID,
	})

	return publicAccount(account), nil
}

// Login verifies credentials and issues a session token. An unknown email and
// a wrong password produce the same error value so the response cannot be
// used to probe which accounts exist.
func (s *Service) Login(ctx context.Context, email, plaintext string) (string, *PublicAccount, error) {
	email = normalizeEmail(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if account == nil {
		return "", nil, apperrors.InvalidCredentials()
	}

	if err := s.hasher.Verify(plaintext, account.PasswordHash); err != nil {
		return "", nil, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.Generate(account.ID, account.Email)
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}

	s.log.Info("Account logged in", map[string]interface{}{
		logger.FieldAccountID: account.ID,
	})

	return token, publicAccount(account), nil
}

// CurrentUser resolves the account behind a verified token. A missing account
// is possible when the account was removed after the token was issued; that
// is terminal, not retried.
func (s *Service) CurrentUser(ctx context.Context, accountID string) (*PublicAccount, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperrors.NotFound("account", accountID)
	}
	return publicAccount(account), nil
}

func publicAccount(a *store.Account) *PublicAccount {
	return &PublicAccount{
		ID:        a.ID,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}
