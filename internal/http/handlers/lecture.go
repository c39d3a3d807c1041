package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/data/repos"
	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type LectureHandler struct {
	lectures services.LectureService
}

func NewLectureHandler(lectures services.LectureService) *LectureHandler {
	return &LectureHandler{lectures: lectures}
}

// POST /api/lectures
// Schedules a lecture; the video arrives later through /api/upload.
func (h *LectureHandler) Create(c *gin.Context) {
	var in services.LectureInput
	if !bindJSON(c, &in) {
		return
	}
	lecture, err := h.lectures.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err, "create_failed")
		return
	}
	response.RespondCreated(c, gin.H{"lecture": lecture})
}

// GET /api/lectures?teacher_id=&class_id=&status=
func (h *LectureHandler) List(c *gin.Context) {
	teacherID, ok := queryID(c, "teacher_id")
	if !ok {
		return
	}
	classID, ok := queryID(c, "class_id")
	if !ok {
		return
	}
	list, err := h.lectures.List(requestDBC(c), repos.LectureFilter{
		TeacherID: teacherID,
		ClassID:   classID,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		response.RespondServiceError(c, err, "list_failed")
		return
	}
	response.RespondOK(c, gin.H{"lectures": list})
}

// GET /api/lectures/:id
// Includes the latest analysis job's status so clients can poll after an upload.
func (h *LectureHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_lecture_id")
	if !ok {
		return
	}
	view, err := h.lectures.Get(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err, "get_failed")
		return
	}
	response.RespondOK(c, gin.H{"lecture": view})
}

// PATCH /api/lectures/:id
func (h *LectureHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_lecture_id")
	if !ok {
		return
	}
	var in services.LectureInput
	if !bindJSON(c, &in) {
		return
	}
	lecture, err := h.lectures.Update(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err, "update_failed")
		return
	}
	response.RespondOK(c, gin.H{"lecture": lecture})
}

// DELETE /api/lectures/:id
func (h *LectureHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_lecture_id")
	if !ok {
		return
	}
	if err := h.lectures.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err, "delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
