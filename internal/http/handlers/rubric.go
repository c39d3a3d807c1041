package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type RubricHandler struct {
	log     *logger.Logger
	rubrics services.RubricService
}

func NewRubricHandler(log *logger.Logger, rubrics services.RubricService) *RubricHandler {
	return &RubricHandler{log: log.With("handler", "RubricHandler"), rubrics: rubrics}
}

// POST /api/rubrics
// multipart: file, grade
func (h *RubricHandler) Upload(c *gin.Context) {
	form, ok := parseMultipart(c)
	if !ok {
		return
	}
	defer func() { _ = form.RemoveAll() }()

	var file *services.IncomingFile
	for _, f := range incomingFiles(form) {
		if f.Field != services.FieldRubric {
			response.RespondError(c, http.StatusBadRequest, "unknown_file_field", fmt.Errorf("unexpected file field %q", f.Field))
			return
		}
		if file != nil {
			response.RespondError(c, http.StatusBadRequest, "duplicate_file_field", fmt.Errorf("only one %s file is accepted", f.Field))
			return
		}
		file = &f
	}
	if file == nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("a %s part is required", services.FieldRubric))
		return
	}

	rubric, err := h.rubrics.Upload(requestDBC(c), formValue(form, "grade"), *file)
	if err != nil {
		response.RespondServiceError(c, err, "rubric_upload_failed")
		return
	}
	response.RespondCreated(c, gin.H{"rubric": rubric})
}

// GET /api/rubrics
func (h *RubricHandler) List(c *gin.Context) {
	list, err := h.rubrics.List(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err, "list_failed")
		return
	}
	response.RespondOK(c, gin.H{"rubrics": list})
}

// GET /api/rubrics/:id
func (h *RubricHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_rubric_id")
	if !ok {
		return
	}
	rubric, err := h.rubrics.Get(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err, "get_failed")
		return
	}
	response.RespondOK(c, gin.H{"rubric": rubric})
}

// DELETE /api/rubrics/:id
func (h *RubricHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "invalid_rubric_id")
	if !ok {
		return
	}
	if err := h.rubrics.Delete(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err, "delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
