package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type SchoolHandler struct {
	schools services.SchoolService
}

func NewSchoolHandler(schools services.SchoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// POST /api/schools
func (h *SchoolHandler) Create(c *gin.Context) {
	var in services.SchoolInput
	if !bindJSON(c, &in) {
		return
	}
	school, err := h.schools.Create(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err, "create_failed")
		return
	}
	response.RespondCreated(c, gin.H{"school": school})
}

// GET /api/schools
func (h *SchoolHandler) List(c *gin.Context) {
	list, err := h.schools.List(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err, "list_failed")
		return
	}
	response.RespondOK(c, gin.H{"schools": list})
}

// GET /api/schools/:id
func (h *SchoolHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_school_id")
	if !ok {
		return
	}
	school, err := h.schools.Get(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err, "get_failed")
		return
	}
	response.RespondOK(c, gin.H{"school": school})
}

// PATCH /api/schools/:id
func (h *SchoolHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_school_id")
	if !ok {
		return
	}
	var in services.SchoolInput
	if !bindJSON(c, &in) {
		return
	}
	school, err := h.schools.Update(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err, "update_failed")
		return
	}
	response.RespondOK(c, gin.H{"school": school})
}

// DELETE /api/schools/:id
func (h *SchoolHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_school_id")
	if !ok {
		return
	}
	if err := h.schools.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err, "delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
