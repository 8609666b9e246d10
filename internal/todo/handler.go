package todo

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tokenworks/todo-auth-service/internal/user"
	"go.uber.org/zap"
)

// CreateTodoRequest represents the payload for creating a to-do item.
type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// UpdateTodoRequest represents the payload for replacing a to-do item.
type UpdateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// TodoHandler handles HTTP requests for to-do resources.
type TodoHandler struct {
	router  *gin.RouterGroup
	service TodoService
	logger  *zap.Logger
}

// NewTodoHandler registers to-do endpoints on the given router group. The
// group is expected to sit behind the auth middleware, which stores the
// authenticated user in the context.
func NewTodoHandler(router *gin.RouterGroup, service TodoService, logger *zap.Logger) *TodoHandler {
	h := &TodoHandler{router: router, service: service, logger: logger}
	h.router.POST("/todos", h.CreateTodo)
	h.router.GET("/todos", h.ListTodos)
	h.router.GET("/todos/:id", h.ReadTodo)
	h.router.PUT("/todos/:id", h.UpdateTodo)
	h.router.DELETE("/todos/:id", h.DeleteTodo)
	return h
}

func (h *TodoHandler) currentUser(c *gin.Context) (*user.User, bool) {
	raw, exists := c.Get(user.ContextUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return raw.(*user.User), true
}

func (h *TodoHandler) bindID(c *gin.Context) (uint, bool) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return 0, false
	}
	return uri.ID, true
}

// CreateTodo godoc
// @Summary      Create to-do
// @Description  Create a to-do item for the authenticated user
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateTodoRequest  true  "To-do payload"
// @Success      201      {object}  Todo
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /todos [post]
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	todo, err := h.service.CreateTodo(c.Request.Context(), u.ID, req.Title, req.Description)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, todo)
	case errors.Is(err, ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
	default:
		h.logger.Error("service.CreateTodo failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create todo"})
	}
}

// ListTodos godoc
// @Summary      List to-dos
// @Description  List the authenticated user's to-do items
// @Tags         todos
// @Produce      json
// @Success      200  {array}   Todo
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /todos [get]
func (h *TodoHandler) ListTodos(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	todos, err := h.service.ListTodos(c.Request.Context(), u.ID)
	if err != nil {
		h.logger.Error("service.ListTodos failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list todos"})
		return
	}
	c.JSON(http.StatusOK, todos)
}

// ReadTodo godoc
// @Summary      Get to-do
// @Description  Fetch one of the authenticated user's to-do items
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "To-do ID"
// @Success      200  {object}  Todo
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /todos/{id} [get]
func (h *TodoHandler) ReadTodo(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	todo, err := h.service.ReadTodo(c.Request.Context(), u.ID, id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, todo)
	case errors.Is(err, ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
	default:
		h.logger.Error("service.ReadTodo failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read todo"})
	}
}

// UpdateTodo godoc
// @Summary      Update to-do
// @Description  Replace one of the authenticated user's to-do items
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id       path      int                true  "To-do ID"
// @Param        payload  body      UpdateTodoRequest  true  "To-do payload"
// @Success      200      {object}  Todo
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /todos/{id} [put]
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	todo, err := h.service.UpdateTodo(c.Request.Context(), u.ID, id, req.Title, req.Description, req.Done)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, todo)
	case errors.Is(err, ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
	case errors.Is(err, ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
	default:
		h.logger.Error("service.UpdateTodo failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update todo"})
	}
}

// DeleteTodo godoc
// @Summary      Delete to-do
// @Description  Delete one of the authenticated user's to-do items
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "To-do ID"
// @Success      204  {object}  nil
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	err := h.service.DeleteTodo(c.Request.Context(), u.ID, id)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
	default:
		h.logger.Error("service.DeleteTodo failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete todo"})
	}
}
