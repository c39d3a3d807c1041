package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type ClassHandler struct {
	classes services.ClassService
}

func NewClassHandler(classes services.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// POST /api/classes
func (h *ClassHandler) Create(c *gin.Context) {
	var in services.ClassInput
	if !bindJSON(c, &in) {
		return
	}
	class, err := h.classes.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err, "create_failed")
		return
	}
	response.RespondCreated(c, gin.H{"class": class})
}

// GET /api/classes?school_id=&teacher_id=&grade=
func (h *ClassHandler) List(c *gin.Context) {
	schoolID, ok := queryID(c, "school_id")
	if !ok {
		return
	}
	teacherID, ok := queryID(c, "teacher_id")
	if !ok {
		return
	}
	list, err := h.classes.List(requestDBC(c), repos.ClassFilter{
		SchoolID:  schoolID,
		TeacherID: teacherID,
		Grade:     strings.TrimSpace(c.Query("grade")),
	})
	if err != nil {
		response.RespondServiceError(c, err, "list_failed")
		return
	}
	response.RespondOK(c, gin.H{"classes": list})
}

// GET /api/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_class_id")
	if !ok {
		return
	}
	class, err := h.classes.Get(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err, "get_failed")
		return
	}
	response.RespondOK(c, gin.H{"class": class})
}

// PATCH /api/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_class_id")
	if !ok {
		return
	}
	var in services.ClassInput
	if !bindJSON(c, &in) {
		return
	}
	class, err := h.classes.Update(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err, "update_failed")
		return
	}
	response.RespondOK(c, gin.H{"class": class})
}

// DELETE /api/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_class_id")
	if !ok {
		return
	}
	if err := h.classes.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err, "delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
