// Package services – StoreService
//
// Registration and login for pharmacy stores. Registration derives the
// case-insensitive store identifier from the display name, enforces store
// and email uniqueness, hashes the credential, and issues the first signed
// token. Login verifies the credential and reissues the token, replacing
// the previous one.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pharmafind/go-pharmacy-backend/internal/auth"
	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
	"github.com/pharmafind/go-pharmacy-backend/internal/repo"
)

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// StoreService owns the store registry and credential lifecycle.
type StoreService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Tokens signs and verifies store credentials.
	Tokens *auth.TokenIssuer

	// BcryptCost selects the password hashing cost; 0 means the default.
	BcryptCost int
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	StoreName     string
	Email         string
	Password      string
	ContactNumber string
	Latitude      string
	Longitude     string
}

// Register creates a store and issues its first token. The store name and
// email must both be unused; collisions fail with ErrStoreExists and
// ErrEmailExists respectively.
func (s *StoreService) Register(ctx context.Context, in RegisterInput) (*domain.Store, string, error) {
	tr := otel.Tracer("services/StoreService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(attribute.String("store.name", in.StoreName)),
	)
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailRE.MatchString(email) {
		return nil, "", ErrInvalidEmail
	}

	id := domain.StoreID(in.StoreName)
	if _, err := repo.GetStore(ctx, s.DB, id); err == nil {
		return nil, "", ErrStoreExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", err
	}
	if _, err := repo.GetStoreByEmail(ctx, s.DB, email); err == nil {
		return nil, "", ErrEmailExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	store := domain.Store{
		ID:            id,
		StoreName:     in.StoreName,
		Email:         email,
		ContactNumber: in.ContactNumber,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		PasswordHash:  hash,
	}
	if err := store.Validate(); err != nil {
		return nil, "", err
	}
	created, err := repo.CreateStore(ctx, s.DB, store)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, created.ID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login verifies a store credential by email and reissues the token. Both an
// unknown email and a wrong password fail with ErrInvalidCredentials so the
// response does not reveal which part was wrong.
func (s *StoreService) Login(ctx context.Context, email, password string) (*domain.Store, string, error) {
	tr := otel.Tracer("services/StoreService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	store, err := repo.GetStoreByEmail(ctx, s.DB, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrDuplicateRow) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(password, store.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, store.ID)
	if err != nil {
		return nil, "", err
	}
	return store, token, nil
}

// Get looks a store up by display name, resolving through the derived
// case-insensitive identifier.
func (s *StoreService) Get(ctx context.Context, storeName string) (*domain.Store, error) {
	store, err := repo.GetStore(ctx, s.DB, domain.StoreID(storeName))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *StoreService) issueToken(ctx context.Context, storeID string) (string, error) {
	token, exp, err := s.Tokens.Issue(storeID)
	if err != nil {
		return "", err
	}
	if err := repo.UpsertStoreToken(ctx, s.DB, storeID, token, exp); err != nil {
		return "", err
	}
	return token, nil
}
