// Package accounts stores registered users and provides the in-process
// identity provider the sync core observes.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/wellnesshq/tracker/internal/identity"
)

var (
	// ErrAccountExists is returned when registering an already-taken
	// contact address.
	ErrAccountExists = errors.New("account already exists")

	// ErrBadCredentials covers both unknown addresses and wrong passwords.
	ErrBadCredentials = errors.New("invalid contact address or password")
)

const minPasswordLen = 6

// Registry manages account rows.
type Registry struct {
	db *gorm.DB
}

// NewRegistry returns a Registry backed by db.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Register creates a new account. An empty display name defaults to a
// title-cased form of the address's local part.
func (r *Registry) Register(ctx context.Context, contact, displayName, password string) (*identity.Identity, error) {
	contact = strings.ToLower(strings.TrimSpace(contact))
	if !strings.Contains(contact, "@") {
		return nil, fmt.Errorf("invalid contact address %q", contact)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	var existing Account
	err := r.db.WithContext(ctx).Where("contact_address = ?", contact).First(&existing).Error
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if displayName == "" {
		displayName = defaultDisplayName(contact)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := Account{
		ContactAddress: contact,
		DisplayName:    displayName,
		PasswordHash:   hash,
	}
	if err := r.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return identityFor(&account), nil
}

// Authenticate verifies the password for a contact address.
func (r *Registry) Authenticate(ctx context.Context, contact, password string) (*identity.Identity, error) {
	contact = strings.ToLower(strings.TrimSpace(contact))

	var account Account
	err := r.db.WithContext(ctx).Where("contact_address = ?", contact).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	return identityFor(&account), nil
}

func identityFor(a *Account) *identity.Identity {
	return &identity.Identity{
		Key:            a.ContactAddress,
		DisplayName:    a.DisplayName,
		ContactAddress: a.ContactAddress,
	}
}

// defaultDisplayName turns "jane.doe@example.com" into "Jane Doe".
func defaultDisplayName(contact string) string {
	local := contact
	if i := strings.Index(contact, "@"); i >= 0 {
		local = contact[:i]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return cases.Title(language.English).String(local)
}
