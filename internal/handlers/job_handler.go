package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/utils"
)

type JobHandler struct {
	BaseHandler
	jobService services.JobService
}

func NewJobHandler(jobService services.JobService, logger utils.Logger, exposeErrors bool) *JobHandler {
	return &JobHandler{
		BaseHandler: NewBaseHandler(logger, exposeErrors),
		jobService:  jobService,
	}
}

// CreateJob posts a job awaiting admin approval
// @Summary Create job
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body services.CreateJobRequest true "Job data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.CreateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Job created and pending approval",
		"job":     job,
	})
}

// ApproveJob marks a job visible on the public board
// @Summary Approve job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{id}/approve [patch]
func (h *JobHandler) ApproveJob(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Approving job", "job_id", id)

	job, err := h.jobService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

// ListJobs returns the public job board
// @Summary List open jobs
// @Tags jobs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobService.ListOpen(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": jobs})
}

// GetJob returns one job with its poster
// @Summary Get job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Job fetched successfully",
		"job":     job,
	})
}

// ListMyJobs returns the jobs the caller posted, approved or not
// @Summary List my jobs
// @Tags jobs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /jobs/mine [get]
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(jobs), "jobs": jobs})
}

// ListUnapprovedJobs is the admin moderation queue
// @Summary List unapproved jobs
// @Tags referrals
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /referrals/jobs/unapproved [get]
func (h *JobHandler) ListUnapprovedJobs(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListUnapproved(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(jobs), "jobs": jobs})
}
