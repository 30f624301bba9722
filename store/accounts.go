package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/scribely/scribely/database"
	apperrors "github.com/scribely/scribely/errors"
)

// Accounts is the GORM-backed credential store.
type Accounts struct {
	db *database.DB
}

// NewAccounts creates the accounts repository.
func NewAccounts(db *database.DB) *Accounts {
	return &Accounts{db: db}
}

// Create inserts a new account. A unique-index violation on email — including
// one from a registration race that slipped past the caller's pre-check — is
// reported as the same AlreadyExists error.
func (s *Accounts) Create(ctx context.Context, account *Account) error {
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.AlreadyExists("account").WithCause(err)
		}
		return apperrors.DatabaseError(err)
	}
	return nil
}

// FindByEmail returns the account for an email, or nil when absent.
func (s *Accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &account, nil
}

// FindByID returns the account for an id, or nil when absent.
func (s *Accounts) FindByID(ctx context.Context, id string) (*Account, error) {
	var account Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &account, nil
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// GORM translates driver errors when TranslateError is enabled; the string
// check covers drivers that predate translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
