package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/pkg/apperror"
	"github.com/sangkips/optica-api/pkg/oauth"
	"github.com/sangkips/optica-api/pkg/utils"
)

const (
	providerLocal  = "local"
	providerGoogle = "google"
	minPassword    = 8
)

// GoogleAuthenticator is the part of the Google OAuth client the service uses
type GoogleAuthenticator interface {
	IsConfigured() bool
	AuthURL(state string) string
	Authenticate(ctx context.Context, code string) (*oauth.GoogleUserInfo, error)
}

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo      repository.UserRepository
	roleRepo      repository.RoleRepository
	subscriptions *SubscriptionService
	jwtManager    *utils.JWTManager
	google        GoogleAuthenticator
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	subscriptions *SubscriptionService,
	jwtManager *utils.JWTManager,
	google GoogleAuthenticator,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		subscriptions: subscriptions,
		jwtManager:    jwtManager,
		google:        google,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
	Subscription *SubscriptionView
}

// Login authenticates a user and returns tokens. The first sign-in starts
// a trial; an ended subscription is refused.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.signIn(ctx, user.ID)
}

// RegisterInput represents the registration input
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	ShopName  *string
}

func (in *RegisterInput) validate() error {
	var fields []apperror.FieldError
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, apperror.FieldError{Field: "first_name", Message: "First name is required"})
	}
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, apperror.FieldError{Field: "email", Message: "A valid email is required"})
	}
	if len(in.Password) < minPassword {
		fields = append(fields, apperror.FieldError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters", minPassword)})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// Register creates a new shop owner account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := input.validate(); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	username, err := s.uniqueUsername(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Username:  username,
		Email:     input.Email,
		Password:  hashedPassword,
		Provider:  providerLocal,
		ShopName:  input.ShopName,
	}

	if err := s.createOwner(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) createOwner(ctx context.Context, user *entity.User) error {
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.NewConflictError("Email already registered")
		}
		return err
	}

	role, err := s.roleRepo.GetByName(ctx, entity.RoleOwner)
	if err != nil || role == nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Owner role missing, user created without role")
		return nil
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to assign owner role")
	}
	return nil
}

// uniqueUsername derives a username from email, suffixing a number on collision
func (s *AuthService) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := utils.UsernameFromEmail(email)
	candidate := base
	for i := 1; i < 100; i++ {
		existing, err := s.userRepo.GetByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return base + "-" + uuid.New().String()[:8], nil
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	return s.signIn(ctx, userID)
}

// signIn checks the subscription and issues a token pair
func (s *AuthService) signIn(ctx context.Context, userID uuid.UUID) (*LoginOutput, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	sub, err := s.subscriptions.CheckAccess(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Subscription: s.subscriptions.view(sub),
	}, nil
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	if user.Password != "" && !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}
	if len(input.NewPassword) < minPassword {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "new_password", Message: fmt.Sprintf("Password must be at least %d characters", minPassword)},
		})
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// UpdateProfileInput represents the update profile input
type UpdateProfileInput struct {
	UserID      uuid.UUID
	FirstName   string
	LastName    string
	Username    string
	Photo       *string
	ShopName    *string
	ShopAddress *string
	ShopPhone   *string
}

// UpdateProfile updates the user's profile and shop details
func (s *AuthService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	if input.Username != "" && input.Username != user.Username {
		existingUser, err := s.userRepo.GetByUsername(ctx, input.Username)
		if err != nil {
			return nil, err
		}
		if existingUser != nil && existingUser.ID != user.ID {
			return nil, apperror.NewConflictError("Username already taken")
		}
		user.Username = input.Username
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Photo != nil {
		user.Photo = input.Photo
	}
	if input.ShopName != nil {
		user.ShopName = input.ShopName
	}
	if input.ShopAddress != nil {
		user.ShopAddress = input.ShopAddress
	}
	if input.ShopPhone != nil {
		user.ShopPhone = input.ShopPhone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GoogleAuthURL returns the consent URL with a signed state token
func (s *AuthService) GoogleAuthURL() (string, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return "", apperror.NewAppError(http.StatusServiceUnavailable, "Google sign-in is not configured")
	}
	state, err := s.jwtManager.GenerateStateToken()
	if err != nil {
		return "", err
	}
	return s.google.AuthURL(state), nil
}

// GoogleCallback verifies state, exchanges code and signs the user in,
// creating the account on first use.
func (s *AuthService) GoogleCallback(ctx context.Context, state, code string) (*LoginOutput, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return nil, apperror.NewAppError(http.StatusServiceUnavailable, "Google sign-in is not configured")
	}
	if err := s.jwtManager.ValidateStateToken(state); err != nil {
		return nil, apperror.NewBadRequestError("Invalid OAuth state")
	}

	info, err := s.google.Authenticate(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return nil, apperror.NewForbiddenError("Google account email is not verified")
		}
		return nil, apperror.NewBadRequestError("Google sign-in failed")
	}

	email := strings.ToLower(info.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		username, err := s.uniqueUsername(ctx, email)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		providerID := info.ID
		user = &entity.User{
			FirstName:       info.GivenName,
			LastName:        info.FamilyName,
			Username:        username,
			Email:           email,
			Provider:        providerGoogle,
			ProviderID:      &providerID,
			EmailVerifiedAt: &now,
		}
		if info.Picture != "" {
			picture := info.Picture
			user.Photo = &picture
		}
		if err := s.createOwner(ctx, user); err != nil {
			return nil, err
		}
		log.Info().Str("user_id", user.ID.String()).Msg("User registered with Google")
	} else if user.ProviderID == nil {
		providerID := info.ID
		user.ProviderID = &providerID
		if err := s.userRepo.Update(ctx, user); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to link Google account")
		}
	}

	return s.signIn(ctx, user.ID)
}
