package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/auth"
	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
)

type AuthService struct {
	db     *gorm.DB
	tokens *auth.Manager
}

func NewAuthService(db *gorm.DB, tokens *auth.Manager) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	RealName string
	Phone    string
	Role     model.UserRole
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	v := &validator{}
	if input.Username == "" {
		v.addError("username", "username is required")
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		v.addError("email", "a valid email is required")
	}
	if len(input.Password) < 6 {
		v.addError("password", "password must be at least 6 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = model.RoleUser
	}

	users := repository.NewUserRepository(s.db)
	if taken, err := users.UsernameTaken(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: username already exists", ErrConflict)
	}
	if taken, err := users.EmailTaken(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email already exists", ErrConflict)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		RealName:     input.RealName,
		Phone:        input.Phone,
		Role:         role,
		Status:       model.UserStatusActive,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a token pair. The last-login
// timestamp is updated on success.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.User, *auth.TokenPair, error) {
	users := repository.NewUserRepository(s.db)
	user, err := users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: bad credentials", ErrPermissionDenied)
		}
		return nil, nil, err
	}
	if !user.IsActive() || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%w: bad credentials", ErrPermissionDenied)
	}

	now := time.Now().UTC()
	pair, err := s.tokens.Issue(user, now)
	if err != nil {
		return nil, nil, err
	}

	user.LastLogin = &now
	if err := users.Save(ctx, user); err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	principal, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	user, err := repository.NewUserRepository(s.db).GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, fmt.Errorf("%w: user is not active", ErrPermissionDenied)
	}
	return s.tokens.Issue(user, time.Now().UTC())
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := repository.NewUserRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	RealName   *string
	Phone      *string
	Department *string
	Position   *string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*model.User, error) {
	users := repository.NewUserRepository(s.db)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.RealName != nil {
		user.RealName = *input.RealName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.Position != nil {
		user.Position = *input.Position
	}
	if err := users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return &ValidationError{Fields: []FieldError{
			{Field: "new_password", Message: "password must be at least 6 characters"},
		}}
	}

	users := repository.NewUserRepository(s.db)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		return fmt.Errorf("%w: old password does not match", ErrPermissionDenied)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return users.Save(ctx, user)
}
