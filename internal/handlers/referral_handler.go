package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/utils"
)

type ReferralHandler struct {
	BaseHandler
	referralService services.ReferralService
}

func NewReferralHandler(referralService services.ReferralService, logger utils.Logger, exposeErrors bool) *ReferralHandler {
	return &ReferralHandler{
		BaseHandler:     NewBaseHandler(logger, exposeErrors),
		referralService: referralService,
	}
}

// Apply submits the caller's own application with a resume
// @Summary Apply to job
// @Tags referrals
// @Accept mpfd
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /referrals/apply [post]
func (h *ReferralHandler) Apply(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resume, err := optionalFile(c, "resume")
	if err != nil {
		h.bindError(c, err)
		return
	}

	h.LogRequest(c, "Submitting application", "job_id", req.JobID)

	referral, err := h.referralService.Apply(c.Request.Context(), actor, &req, resume)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Application submitted successfully",
		"referral": referral,
	})
}

// CreateReferral refers an external candidate to a job
// @Summary Create referral
// @Tags referrals
// @Accept mpfd
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /referrals [post]
func (h *ReferralHandler) CreateReferral(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.CreateReferralRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	resume, err := optionalFile(c, "resume")
	if err != nil {
		h.bindError(c, err)
		return
	}

	referral, err := h.referralService.CreateReferral(c.Request.Context(), actor, &req, resume)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "referral": referral})
}

// UpdateStatus moves a pending referral to accepted or rejected
// @Summary Update referral status
// @Tags referrals
// @Accept json
// @Produce json
// @Param id path string true "Referral ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} ErrorResponse
// @Router /referrals/{id}/status [patch]
func (h *ReferralHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Updating referral status", "referral_id", id, "status", req.Status)

	referral, err := h.referralService.UpdateStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "referral": referral})
}

// GetReferral returns one referral visible to the caller
// @Summary Get referral
// @Tags referrals
// @Produce json
// @Param id path string true "Referral ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /referrals/{id} [get]
func (h *ReferralHandler) GetReferral(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	referral, err := h.referralService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "referral": referral})
}

// ListMine returns referrals where the caller is candidate or referrer
// @Summary My referrals
// @Tags referrals
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /referrals/me [get]
func (h *ReferralHandler) ListMine(c *gin.Context) {
	h.list(c, h.referralService.ListMine)
}

// ListApplications returns applications the caller may moderate
// @Summary Applications
// @Tags referrals
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /referrals/applications [get]
func (h *ReferralHandler) ListApplications(c *gin.Context) {
	h.list(c, h.referralService.ListApplications)
}

// ListForEmployeeJobs returns referrals on jobs the caller posted
// @Summary Referrals on my jobs
// @Tags referrals
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /referrals/employee/jobs [get]
func (h *ReferralHandler) ListForEmployeeJobs(c *gin.Context) {
	h.list(c, h.referralService.ListForEmployeeJobs)
}

type referralLister func(ctx context.Context, actor services.Actor) ([]*models.Referral, error)

func (h *ReferralHandler) list(c *gin.Context, fetch referralLister) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	referrals, err := fetch(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(referrals), "referrals": referrals})
}
