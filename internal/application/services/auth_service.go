package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	"github.com/kaayakalpa/healthfinder/pkg/config"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

const minPasswordLength = 6

// TokenClaims are the JWT claims issued at login
type TokenClaims struct {
	Role entities.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and profile management
type AuthService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// RegisterInput carries a sign-up request
type RegisterInput struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Phone    string        `json:"phone"`
	Role     entities.Role `json:"role"`
}

// AuthResult is a user together with a freshly issued token
type AuthResult struct {
	User  *entities.User
	Token string
}

// Register creates an account. Admin accounts cannot be self-assigned.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" {
		return nil, apperrors.NewValidationError("Name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("Valid email required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("Min 6 chars password")
	}

	role := input.Role
	switch role {
	case "":
		role = entities.RoleUser
	case entities.RoleUser, entities.RoleBusiness:
	default:
		return nil, apperrors.NewValidationError("Invalid role")
	}

	exists, err := s.CheckEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewValidationError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now().UTC()
	user := &entities.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeConflict) {
			return nil, apperrors.NewValidationError("User already exists")
		}
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// CheckEmail reports whether an account uses email
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case apperrors.Is(err, apperrors.ErrorTypeNotFound):
		return false, nil
	default:
		return false, err
	}
}

// IssueToken signs an HS256 token whose subject is the user id
func (s *AuthService) IssueToken(user *entities.User) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims
func (s *AuthService) ParseToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		if err == nil {
			err = errors.New("token has no subject")
		}
		return nil, &apperrors.AppError{
			Type:    apperrors.ErrorTypeUnauthorized,
			Message: "Not authorized, token failed",
			Err:     err,
		}
	}
	return claims, nil
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("Not authorized, user not found")
		}
		return nil, err
	}
	return user, nil
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID string) (*entities.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies the non-empty profile fields
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update entities.ProfileUpdate) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	setIfPresent(&user.Name, update.Name)
	setIfPresent(&user.Phone, update.Phone)
	setIfPresent(&user.Address, update.Address)
	setIfPresent(&user.ProfilePhoto, update.ProfilePhoto)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyMobile marks the user's phone as verified
func (s *AuthService) VerifyMobile(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsMobileVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BusinessUpgrade carries a request to become a business account
type BusinessUpgrade struct {
	BusinessName  string `json:"business_name"`
	LicenseNumber string `json:"license_number"`
	LicenseURL    string `json:"license_url"`
}

// UpgradeToBusiness converts a user account into an unverified business account
func (s *AuthService) UpgradeToBusiness(ctx context.Context, userID string, input BusinessUpgrade) (*entities.User, error) {
	businessName := strings.TrimSpace(input.BusinessName)
	licenseNumber := strings.TrimSpace(input.LicenseNumber)
	if businessName == "" {
		return nil, apperrors.NewValidationError("Business name is required")
	}
	if licenseNumber == "" {
		return nil, apperrors.NewValidationError("License number is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == entities.RoleBusiness {
		return nil, apperrors.NewValidationError("Already a business account")
	}

	user.Role = entities.RoleBusiness
	user.BusinessName = businessName
	user.LicenseNumber = licenseNumber
	user.LicenseURL = strings.TrimSpace(input.LicenseURL)
	user.IsLicenseVerified = false

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Msg("business upgrade requested")
	return user, nil
}

func setIfPresent(dst *string, value *string) {
	if value == nil {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		*dst = v
	}
}
