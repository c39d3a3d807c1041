package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// POST /api/users
// body: { "email", "password", "first_name", "last_name", "role", "school_id" }
func (h *UserHandler) Create(c *gin.Context) {
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err, "create_failed")
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// GET /api/users?school_id=&role=
func (h *UserHandler) List(c *gin.Context) {
	schoolID, ok := queryID(c, "school_id")
	if !ok {
		return
	}
	list, err := h.users.List(requestDBC(c), repos.UserFilter{
		SchoolID: schoolID,
		Role:     strings.TrimSpace(c.Query("role")),
	})
	if err != nil {
		response.RespondServiceError(c, err, "list_failed")
		return
	}
	response.RespondOK(c, gin.H{"users": list})
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_user_id")
	if !ok {
		return
	}
	user, err := h.users.Get(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err, "get_failed")
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_user_id")
	if !ok {
		return
	}
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.Update(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err, "update_failed")
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_user_id")
	if !ok {
		return
	}
	if err := h.users.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err, "delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
