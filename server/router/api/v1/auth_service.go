package v1

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/soleshop/soleshop/server/auth"
	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/store"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
	CreatedTs int64  `json:"createdTs"`
}

func convertUser(user *store.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		CreatedTs: user.CreatedTs,
	}
}

// Signup registers a new account.
// POST /api/v1/auth/signup
func (s *APIV1Service) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	req := &SignupRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apierrors.InvalidArgument("invalid email address")
	}
	if len(req.Password) < 6 {
		return apierrors.InvalidArgument("password must be at least 6 characters")
	}

	existing, err := s.Store.GetUser(ctx, &store.FindUser{Email: &req.Email})
	if err != nil {
		return apierrors.Internal("failed to look up user", err)
	}
	if existing != nil {
		return apierrors.Conflict("email already registered")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apierrors.Internal("failed to hash password", err)
	}
	user, err := s.Store.CreateUser(ctx, &store.User{
		ID:           shortuuid.New(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         store.RoleUser,
		CreatedTs:    time.Now().Unix(),
	})
	if err != nil {
		return apierrors.Internal("failed to create user", err)
	}

	token, err := s.Signer.Sign(user.ID, user.Role)
	if err != nil {
		return apierrors.Internal("failed to sign token", err)
	}
	return c.JSON(http.StatusOK, &AuthResponse{Token: token, User: convertUser(user)})
}

// Login authenticates an existing account.
// POST /api/v1/auth/login
func (s *APIV1Service) Login(c echo.Context) error {
	ctx := c.Request().Context()
	req := &LoginRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.Store.GetUser(ctx, &store.FindUser{Email: &email})
	if err != nil {
		return apierrors.Internal("failed to look up user", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return apierrors.Unauthorized("invalid email or password")
	}

	token, err := s.Signer.Sign(user.ID, user.Role)
	if err != nil {
		return apierrors.Internal("failed to sign token", err)
	}
	return c.JSON(http.StatusOK, &AuthResponse{Token: token, User: convertUser(user)})
}
