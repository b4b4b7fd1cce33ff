package auth

import (
	"context"
	"errors"
	"fmt"

	"schoolauth/internal/domain"
	jwtsvc "schoolauth/internal/pkg/jwt"
	"schoolauth/internal/pkg/password"
	"schoolauth/internal/repository"
)

const TokenTypeBearer = "Bearer"

// Service contains the signup, signin, refresh and signout flows
type Service struct {
	users   UserRepository
	jwt     TokenIssuer
	refresh *RefreshTokenService
}

type SigninResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

func NewService(users UserRepository, jwt TokenIssuer, refresh *RefreshTokenService) *Service {
	return &Service{
		users:   users,
		jwt:     jwt,
		refresh: refresh,
	}
}

func (s *Service) SignupStudent(ctx context.Context, req SignupStudentRequest) (*domain.User, error) {
	return s.signup(ctx, &domain.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Kind:      domain.KindStudent,
		Student: &domain.Student{
			StudentID:    req.StudentID,
			StudentClass: req.StudentClass,
		},
	}, req.Password)
}

func (s *Service) SignupTeacher(ctx context.Context, req SignupTeacherRequest) (*domain.User, error) {
	return s.signup(ctx, &domain.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Kind:      domain.KindTeacher,
	}, req.Password)
}

// SignupAdmin creates an administrator account; used by the seed command.
func (s *Service) SignupAdmin(ctx context.Context, email, plain string) (*domain.User, error) {
	return s.signup(ctx, &domain.User{
		Email:     email,
		FirstName: "Admin",
		Kind:      domain.KindAdmin,
	}, plain)
}

func (s *Service) signup(ctx context.Context, user *domain.User, plain string) (*domain.User, error) {
	user.Email = domain.NormalizeEmail(user.Email)

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	hash, err := password.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.Roles = []domain.Role{user.Kind.DefaultRole()}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Signin checks credentials and issues an access token plus a refresh token
// that replaces any the user held before. Nothing is written on failure.
func (s *Service) Signin(ctx context.Context, req SigninRequest) (*SigninResult, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := password.Verify(req.Password, user.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	accessToken, err := s.jwt.IssueAccessToken(jwtsvc.Identity{
		ID:    user.ID,
		Email: user.Email,
		Roles: user.RoleNames(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &SigninResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken.Token}, nil
}

// Refresh exchanges a live refresh token for a new access token and a new
// refresh token. The presented token stops working once this returns.
func (s *Service) Refresh(ctx context.Context, raw string) (*RefreshResult, error) {
	current, err := s.refresh.FindByToken(ctx, raw)
	if err != nil {
		return nil, err
	}

	current, err = s.refresh.VerifyExpiration(ctx, current)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("load token owner: %w", err)
	}

	accessToken, err := s.jwt.IssueAccessTokenForEmail(owner.Email)
	if err != nil {
		return nil, err
	}

	next, err := s.refresh.Create(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: next.Token,
		TokenType:    TokenTypeBearer,
	}, nil
}

// Signout revokes the principal's refresh token. A nil principal is a no-op.
// It reports how many tokens were removed; callers treat 0 and 1 alike.
func (s *Service) Signout(ctx context.Context, principal *domain.Principal) (int64, error) {
	if principal == nil {
		return 0, nil
	}
	return s.refresh.DeleteByUserID(ctx, principal.ID)
}
