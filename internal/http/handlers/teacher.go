package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type TeacherHandler struct {
	teachers services.TeacherService
}

func NewTeacherHandler(teachers services.TeacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

// POST /api/teachers
func (h *TeacherHandler) Create(c *gin.Context) {
	var in services.TeacherInput
	if !bindJSON(c, &in) {
		return
	}
	teacher, err := h.teachers.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err, "create_failed")
		return
	}
	response.RespondCreated(c, gin.H{"teacher": teacher})
}

// GET /api/teachers?school_id=
func (h *TeacherHandler) List(c *gin.Context) {
	schoolID, ok := queryID(c, "school_id")
	if !ok {
		return
	}
	list, err := h.teachers.List(requestDBC(c), schoolID)
	if err != nil {
		response.RespondServiceError(c, err, "list_failed")
		return
	}
	response.RespondOK(c, gin.H{"teachers": list})
}

// GET /api/teachers/:id
func (h *TeacherHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_teacher_id")
	if !ok {
		return
	}
	teacher, err := h.teachers.Get(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err, "get_failed")
		return
	}
	response.RespondOK(c, gin.H{"teacher": teacher})
}

// PATCH /api/teachers/:id
func (h *TeacherHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_teacher_id")
	if !ok {
		return
	}
	var in services.TeacherInput
	if !bindJSON(c, &in) {
		return
	}
	teacher, err := h.teachers.Update(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err, "update_failed")
		return
	}
	response.RespondOK(c, gin.H{"teacher": teacher})
}

// DELETE /api/teachers/:id
func (h *TeacherHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_teacher_id")
	if !ok {
		return
	}
	if err := h.teachers.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err, "delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/teachers/:id/avatar
func (h *TeacherHandler) Avatar(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_teacher_id")
	if !ok {
		return
	}
	path, err := h.teachers.AvatarFile(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err, "avatar_failed")
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.File(path)
}
