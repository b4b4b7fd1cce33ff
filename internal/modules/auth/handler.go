package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"schoolauth/internal/middleware"
	"schoolauth/internal/pkg/response"
	"schoolauth/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterPublicRoutes mounts /auth. optionalAuth runs in front of signout
// so it can see who is signing out without requiring a token.
func (h *Handler) RegisterPublicRoutes(r gin.IRouter, optionalAuth gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup/student", h.SignupStudent)
		authGroup.POST("/signup/teacher", h.SignupTeacher)
		authGroup.POST("/signin", h.Signin)
		authGroup.POST("/refreshtoken", h.RefreshToken)
		authGroup.POST("/signout", optionalAuth, h.Signout)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected gin.IRouter) {
	protected.GET("/users/me", h.Me)
}

// SignupStudent registers a student account.
// @Summary		Register student
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	SignupStudentRequest	true	"payload"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Router		/auth/signup/student [post]
func (h *Handler) SignupStudent(c *gin.Context) {
	var req SignupStudentRequest
	if !h.bind(c, &req) {
		return
	}

	if _, err := h.service.SignupStudent(c.Request.Context(), req); err != nil {
		h.signupError(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Student registered successfully")
}

// SignupTeacher registers a teacher account.
// @Summary		Register teacher
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	SignupTeacherRequest	true	"payload"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Router		/auth/signup/teacher [post]
func (h *Handler) SignupTeacher(c *gin.Context) {
	var req SignupTeacherRequest
	if !h.bind(c, &req) {
		return
	}

	if _, err := h.service.SignupTeacher(c.Request.Context(), req); err != nil {
		h.signupError(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Teacher registered successfully")
}

func (h *Handler) signupError(c *gin.Context, err error) {
	if errors.Is(err, ErrDuplicateUser) {
		response.Error(c, http.StatusBadRequest, "EMAIL_EXISTS", "This email is already registered")
		return
	}
	if errors.Is(err, ErrPasswordTooLong) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body",
			map[string]string{"Password": "max"})
		return
	}
	h.internalError(c, err, "REGISTRATION_FAILED", "Failed to register user")
}

// Signin authenticates by email and password.
// @Summary		Sign in
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	SigninRequest	true	"payload"
// @Success		200	{object}	JwtResponse
// @Failure		401	{object}	map[string]interface{}
// @Router		/auth/signin [post]
func (h *Handler) Signin(c *gin.Context) {
	var req SigninRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.service.Signin(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		h.internalError(c, err, "LOGIN_FAILED", "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, JwtResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ID:           result.User.ID,
		Email:        result.User.Email,
		Username:     result.User.Email,
		Roles:        result.User.RoleNames(),
	})
}

// RefreshToken rotates a refresh token.
// @Summary		Refresh token
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	TokenRefreshRequest	true	"payload"
// @Success		200	{object}	TokenRefreshResponse
// @Failure		403	{object}	map[string]interface{}
// @Router		/auth/refreshtoken [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req TokenRefreshRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshTokenNotFound):
			response.Error(c, http.StatusForbidden, "REFRESH_TOKEN_NOT_FOUND", "Refresh token is not in database")
		case errors.Is(err, ErrRefreshTokenExpired):
			response.Error(c, http.StatusForbidden, "REFRESH_TOKEN_EXPIRED", "Refresh token was expired. Please make a new signin request")
		default:
			h.internalError(c, err, "REFRESH_FAILED", "Failed to refresh token")
		}
		return
	}

	c.JSON(http.StatusOK, TokenRefreshResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    result.TokenType,
	})
}

// Signout revokes the caller's refresh token if the caller is known.
// @Summary		Sign out
// @Tags		Auth
// @Produce		json
// @Success		200	{object}	map[string]interface{}
// @Router		/auth/signout [post]
func (h *Handler) Signout(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	if _, err := h.service.Signout(c.Request.Context(), principal); err != nil {
		_ = c.Error(err)
		h.logger.WarnContext(c.Request.Context(), "signout: revoke refresh token failed",
			"user_id", principal.ID, "error", err)
	}

	response.Message(c, http.StatusOK, "User logged out successfully")
}

// Me returns the authenticated principal.
// @Summary		Current user
// @Tags		Users
// @Security	BearerAuth
// @Produce		json
// @Success		200	{object}	PrincipalResponse
// @Failure		401	{object}	map[string]interface{}
// @Router		/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	c.JSON(http.StatusOK, PrincipalResponse{
		ID:    principal.ID,
		Email: principal.Email,
		Roles: principal.Roles,
	})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Details(err))
		return false
	}
	return true
}

func (h *Handler) internalError(c *gin.Context, err error, code, message string) {
	_ = c.Error(err)
	h.logger.ErrorContext(c.Request.Context(), message, "error", err)
	response.Error(c, http.StatusInternalServerError, code, message)
}
