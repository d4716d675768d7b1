package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type AuthUseCase struct {
	Users       entity.UserRepository
	Hasher      PasswordHasher
	Credentials CredentialService
}

func NewAuthUseCase(users entity.UserRepository, hasher PasswordHasher, credentials CredentialService) *AuthUseCase {
	return &AuthUseCase{
		Users:       users,
		Hasher:      hasher,
		Credentials: credentials,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if errs := ValidateRegisterInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	email := entity.NormalizeEmail(input.Email)
	existing, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, internal("registration failed", err)
	}
	if existing != nil {
		return nil, conflict("User already exists")
	}

	hash, err := uc.Hasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, internal("registration failed", err)
	}

	user, err := entity.NewUser(input.Name, email, hash)
	if err != nil {
		return nil, newValidationError([]ValidationError{{"user", err.Error()}})
	}

	if err := uc.Users.Create(ctx, user); err != nil {
		// a concurrent register can still hit the unique index
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, conflict("User already exists")
		}
		return nil, internal("registration failed", err)
	}

	log.Printf("✅ user registered: %s", user.ID)
	return uc.session(user)
}

// Login answers "Invalid credentials" for both unknown emails and wrong passwords.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if input.Email == "" || input.Password == "" {
		return nil, unauthenticated("Invalid credentials")
	}

	user, err := uc.Users.FindByEmail(ctx, entity.NormalizeEmail(input.Email))
	if err != nil {
		return nil, internal("login failed", err)
	}
	if user == nil {
		return nil, unauthenticated("Invalid credentials")
	}

	if err := uc.Hasher.Compare(user.PasswordHash, []byte(input.Password)); err != nil {
		return nil, unauthenticated("Invalid credentials")
	}

	return uc.session(user)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, unauthenticated("No token provided")
	}

	userID, err := uc.Credentials.Validate(token)
	if err != nil {
		return nil, unauthenticated("Invalid token")
	}

	user, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, internal("authentication failed", err)
	}
	if user == nil {
		return nil, unauthenticated("User not found")
	}

	return user, nil
}

func (uc *AuthUseCase) session(user *entity.User) (*Session, error) {
	token, expiresAt, err := uc.Credentials.Issue(user.ID)
	if err != nil {
		return nil, internal("could not issue token", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
