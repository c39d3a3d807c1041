package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

// maxMultipartMemory bounds the in-memory part of a parsed form; larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// pathID parses the named path param as a UUID, responding 400 with code on failure.
func pathID(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, fmt.Errorf("%s must be a uuid", name))
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query param. An absent param yields nil.
func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be a uuid", name))
		return nil, false
	}
	return &id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func parseMultipart(c *gin.Context) (*multipart.Form, bool) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return nil, false
	}
	return c.Request.MultipartForm, true
}

func formValue(form *multipart.Form, name string) string {
	if form == nil {
		return ""
	}
	if v := form.Value[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// formInt parses an optional integer form field.
func formInt(form *multipart.Form, name string) (*int, error) {
	raw := formValue(form, name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return &n, nil
}

// incomingFiles flattens every file part of the form. Repeated fields are kept so the service can reject them.
func incomingFiles(form *multipart.Form) []services.IncomingFile {
	if form == nil {
		return nil
	}
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var out []services.IncomingFile
	for _, field := range fields {
		for _, fh := range form.File[field] {
			out = append(out, services.IncomingFromHeader(field, fh))
		}
	}
	return out
}
