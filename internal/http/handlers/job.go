package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := pathID(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	job, err := h.jobs.Get(requestDBC(c), jobID)
	if err != nil {
		response.RespondServiceError(c, err, "job_failed")
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}
