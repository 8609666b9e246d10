package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserKey is the key under which the authenticated User is stored in Gin context.
const ContextUserKey = "user"

// UpdateEmailRequest represents the payload to update a user's email.
// @Description payload to change email address
type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdatePasswordRequest represents the payload to update a user's password.
// @Description payload to change password
type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// UserHandler handles HTTP requests for user resources.
type UserHandler struct {
	router  *gin.RouterGroup
	service UserService
	logger  *zap.Logger
}

// NewUserHandler registers user endpoints on the given router group.
func NewUserHandler(router *gin.RouterGroup, service UserService, logger *zap.Logger) *UserHandler {
	h := &UserHandler{router: router, service: service, logger: logger}
	h.router.GET("/users/:id", h.ReadUserByID)
	h.router.GET("/users", h.ReadUserByEmail)
	h.router.PUT("/users/:id/email", h.UpdateEmail)
	h.router.PUT("/users/:id/password", h.UpdatePassword)
	h.router.DELETE("/users/:id", h.DeleteUser)
	return h
}

func (h *UserHandler) bindID(c *gin.Context) (uint, bool) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return 0, false
	}
	return uri.ID, true
}

// ReadCurrentUser returns the authenticated user from context.
// @Summary      Get current user
// @Description  Fetch the "me" record for the authenticated user
// @Tags         users
// @Produce      json
// @Success      200 {object} User
// @Failure      401 {object} map[string]string
// @Router       /users/me [get]
func (h *UserHandler) ReadCurrentUser(c *gin.Context) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	u := raw.(*User)
	c.JSON(http.StatusOK, u)
}

// ReadUserByID godoc
// @Summary      Get User by ID
// @Description  Fetch a user by their ID
// @Tags         users
// @Produce      json
// @Param        id       path      int     true  "User ID"
// @Success      200      {object}  User
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) ReadUserByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	u, err := h.service.ReadUserByID(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, u)
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		h.logger.Error("service.ReadUserByID failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read user"})
	}
}

// ReadUserByEmail godoc
// @Summary      Get User by email
// @Description  Fetch a user by their email address
// @Tags         users
// @Produce      json
// @Param        email    query     string  true  "Email address"
// @Success      200      {object}  User
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) ReadUserByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter required"})
		return
	}
	u, err := h.service.ReadUserByEmail(c.Request.Context(), email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, u)
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		h.logger.Error("service.ReadUserByEmail failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read user"})
	}
}

// UpdateEmail godoc
// @Summary      Update email
// @Description  Change a user's email address
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      int                 true  "User ID"
// @Param        payload  body      UpdateEmailRequest  true  "New email"
// @Success      204      {object}  nil
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users/{id}/email [put]
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
		return
	}
	err := h.service.UpdateEmail(c.Request.Context(), id, req.Email)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, ErrInvalidEmailFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
	default:
		h.logger.Error("service.UpdateEmail failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update email"})
	}
}

// UpdatePassword godoc
// @Summary      Update password
// @Description  Change a user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "User ID"
// @Param        payload  body      UpdatePasswordRequest  true  "New password"
// @Success      204      {object}  nil
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users/{id}/password [put]
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password format"})
		return
	}
	err := h.service.UpdatePassword(c.Request.Context(), id, req.Password)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, ErrPasswordShouldBeNCharacters),
		errors.Is(err, ErrPasswordNotAlphanumeric),
		errors.Is(err, ErrPasswordDoesNotHaveSpecialCharacter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("service.UpdatePassword failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update password"})
	}
}

// DeleteUser godoc
// @Summary      Delete User
// @Description  Soft-delete a user by ID
// @Tags         users
// @Produce      json
// @Param        id       path      int     true  "User ID"
// @Success      204      {object}  nil
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.logger.Error("service.DeleteUser failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	c.Status(http.StatusNoContent)
}
