package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("please enter a valid email")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrAddressRequired    = errors.New("address is required")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// TokenBlacklist revokes access tokens before they expire.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Address         string
}

// AuthResult is returned by every call that opens a session.
type AuthResult struct {
	User      *model.User
	Tokens    *util.TokenPair
	SessionID string
}

type AuthService interface {
	Signup(input SignupInput) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	Refresh(refreshToken string) (*util.TokenPair, error)
	Logout(ctx context.Context, claims *util.Claims) error
	CurrentUser(userID uint) (*model.User, error)
	UpdateAddress(userID uint, address string) (*model.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	sessions       *session.Manager
	blacklist      TokenBlacklist
	metrics        *metrics.StoreMetrics
	jwtSecret      string
	accessExpiry   time.Duration
	refreshExpiry  time.Duration
	defaultAddress string
}

type AuthConfig struct {
	JWTSecret      string
	AccessExpiry   time.Duration
	RefreshExpiry  time.Duration
	DefaultAddress string
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessions *session.Manager,
	blacklist TokenBlacklist,
	m *metrics.StoreMetrics,
	cfg AuthConfig,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		sessions:       sessions,
		blacklist:      blacklist,
		metrics:        m,
		jwtSecret:      cfg.JWTSecret,
		accessExpiry:   cfg.AccessExpiry,
		refreshExpiry:  cfg.RefreshExpiry,
		defaultAddress: cfg.DefaultAddress,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !util.IsValidEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}

func (s *authService) Signup(input SignupInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	logger.Info("Attempting user signup", map[string]interface{}{
		"email": email,
	})

	if err := validateEmail(email); err != nil {
		logger.Warn("Signup rejected: invalid email", map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if err := util.ValidateNewPassword(input.Password, input.ConfirmPassword); err != nil {
		logger.Warn("Signup rejected: invalid password", map[string]interface{}{
			"email":  email,
			"reason": err.Error(),
		})
		return nil, err
	}

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	address := strings.TrimSpace(input.Address)
	if address == "" {
		address = s.defaultAddress
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Address:      address,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	result, err := s.openSession(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User signed up successfully", map[string]interface{}{
		"user_id":    user.ID,
		"email":      email,
		"session_id": result.SessionID,
	})
	return result, nil
}

func (s *authService) Login(email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, util.ErrPasswordRequired
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	result, err := s.openSession(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id":    user.ID,
		"email":      email,
		"roles":      user.RoleNames(),
		"session_id": result.SessionID,
	})
	return result, nil
}

// openSession starts a fresh cart session and issues tokens bound to it.
func (s *authService) openSession(user *model.User) (*AuthResult, error) {
	sess := s.sessions.Start(user.ID, user.Email)
	s.metrics.SetActiveSessions(s.sessions.Len())

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		user.RoleNames(),
		sess.ID,
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		s.sessions.End(sess.ID)
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens, SessionID: sess.ID}, nil
}

// Refresh issues a new token pair for a live session. Roles are re-read so
// admin grants take effect without a new login.
func (s *authService) Refresh(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil || claims.TokenType != util.TokenTypeRefresh {
		logger.Warn("Token refresh rejected: invalid refresh token")
		return nil, ErrInvalidRefresh
	}

	if _, err := s.sessions.Get(claims.SessionID); err != nil {
		logger.Warn("Token refresh rejected: session ended", map[string]interface{}{
			"user_id":    claims.UserID,
			"session_id": claims.SessionID,
		})
		return nil, session.ErrSessionNotFound
	}

	user, err := s.CurrentUser(claims.UserID)
	if err != nil {
		return nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		user.RoleNames(),
		claims.SessionID,
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("Tokens refreshed", map[string]interface{}{
		"user_id":    user.ID,
		"session_id": claims.SessionID,
	})
	return tokens, nil
}

// Logout discards the session with its cart and revokes the presented token.
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	s.sessions.End(claims.SessionID)
	s.metrics.SetActiveSessions(s.sessions.Len())

	if s.blacklist != nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingLifetime()); err != nil {
			logger.Error("Failed to revoke token on logout", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			return err
		}
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id":    claims.UserID,
		"session_id": claims.SessionID,
	})
	return nil
}

func (s *authService) CurrentUser(userID uint) (*model.User, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateAddress(userID uint, address string) (*model.User, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}

	user, err := s.CurrentUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Address == address {
		return user, nil
	}

	user.Address = address
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User address updated", map[string]interface{}{
		"user_id": userID,
	})
	return user, nil
}

func translateUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
