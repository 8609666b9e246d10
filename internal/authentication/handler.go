package authentication

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tokenworks/todo-auth-service/internal/user"
	"go.uber.org/zap"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshRequest carries the expired access token together with the opaque
// refresh token it was issued with.
type RefreshRequest struct {
	Token        string `json:"token" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest is the payload for revoking a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse contains a freshly issued token pair.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Success      bool   `json:"success"`
}

// ErrorResponse reports one or more failure reasons.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

func failure(reasons ...string) ErrorResponse {
	return ErrorResponse{Success: false, Errors: reasons}
}

// rotationReasons lists every reason Rotate can fail with; anything outside
// the list is reported as invalid_token.
var rotationReasons = []error{
	ErrInvalidToken,
	ErrTokenNotExpired,
	ErrTokenNotFound,
	ErrTokenAlreadyUsed,
	ErrTokenRevoked,
	ErrTokenMismatch,
	ErrStoreFailure,
}

func rotationReason(err error) string {
	for _, reason := range rotationReasons {
		if errors.Is(err, reason) {
			return reason.Error()
		}
	}
	return ErrInvalidToken.Error()
}

// AuthHandler handles authentication-related HTTP endpoints.
type AuthHandler struct {
	router  *gin.RouterGroup
	service AuthenticationService
	logger  *zap.Logger
}

// NewAuthHandler registers auth endpoints on the given router group.
func NewAuthHandler(router *gin.RouterGroup, service AuthenticationService, logger *zap.Logger) *AuthHandler {
	h := &AuthHandler{router: router, service: service, logger: logger}
	h.router.POST("/auth/register", h.Register)
	h.router.POST("/auth/login", h.Login)
	h.router.POST("/auth/refresh", h.Refresh)
	h.router.POST("/auth/logout", h.Logout)
	return h
}

// Register godoc
// @Summary      Register
// @Description  Create an account and issue the first token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      RegisterRequest  true  "Registration payload"
// @Success      201      {object}  TokenResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, failure("invalid registration payload"))
		return
	}
	pair, err := h.service.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, TokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken, Success: true})
	case errors.Is(err, user.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, failure("email already registered"))
	case errors.Is(err, user.ErrUsernameAlreadyExists):
		c.JSON(http.StatusConflict, failure("username already taken"))
	case errors.Is(err, user.ErrInvalidEmailFormat),
		errors.Is(err, user.ErrUsernameTooShort),
		errors.Is(err, user.ErrPasswordShouldBeNCharacters),
		errors.Is(err, user.ErrPasswordNotAlphanumeric),
		errors.Is(err, user.ErrPasswordDoesNotHaveSpecialCharacter):
		c.JSON(http.StatusBadRequest, failure(err.Error()))
	default:
		h.logger.Error("Register service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure(ErrStoreFailure.Error()))
	}
}

// Login godoc
// @Summary      Login
// @Description  Authenticate user and issue tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  TokenResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, failure("invalid email or password format"))
		return
	}
	pair, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, TokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken, Success: true})
	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, failure("invalid credentials"))
	default:
		h.logger.Error("Login service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure(ErrStoreFailure.Error()))
	}
}

// Refresh godoc
// @Summary      Refresh Token
// @Description  Exchange an expired access token and its refresh token for a new pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      RefreshRequest  true  "Refresh payload"
// @Success      200      {object}  TokenResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, failure("token and refreshToken required"))
		return
	}
	pair, err := h.service.Rotate(c.Request.Context(), req.Token, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, failure(rotationReason(err)))
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken, Success: true})
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LogoutRequest  true  "Logout payload"
// @Success      204      {object}  nil
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid logout payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, failure("refreshToken required"))
		return
	}
	err := h.service.Revoke(c.Request.Context(), req.RefreshToken)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrTokenNotFound):
		c.JSON(http.StatusUnauthorized, failure(ErrTokenNotFound.Error()))
	default:
		h.logger.Error("Logout service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, failure(ErrStoreFailure.Error()))
	}
}
