package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/utils"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the logging and error mapping shared by every handler.
type BaseHandler struct {
	logger       utils.Logger
	exposeErrors bool
}

func NewBaseHandler(logger utils.Logger, exposeErrors bool) BaseHandler {
	return BaseHandler{logger: logger, exposeErrors: exposeErrors}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.log(c).Debug(msg, append(args, "user_id", c.GetString("user_id"))...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	h.log(c).Error(msg, append(args, "error", err)...)
}

// actor reads the identity placed on the context by AuthMiddleware.RequireAuth.
func (h *BaseHandler) actor(c *gin.Context) (services.Actor, bool) {
	userID, ok := GetUserIDFromContext(c)
	role, roleOK := GetUserRoleFromContext(c)
	if !ok || !roleOK {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Role: role}, true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Invalid request payload",
		Details: err.Error(),
	})
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Email already in use"})
	case errors.Is(err, services.ErrInvalidOTP):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid or expired OTP"})
	case errors.Is(err, services.ErrResumeRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Resume file is required"})
	case errors.Is(err, services.ErrInvalidResume):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid resume file", Details: err.Error()})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Bad request", Details: err.Error()})
	case errors.Is(err, services.ErrEmailNotVerified):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Please verify your email first"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
	case errors.Is(err, services.ErrJobNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Job not found"})
	case errors.Is(err, services.ErrReferralNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Referral not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Conflict", Details: err.Error()})
	case errors.Is(err, services.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Message: "Too many requests, try again later"})
	default:
		h.LogError(c, err, "Unhandled service error")
		resp := ErrorResponse{Message: "Internal server error"}
		if h.exposeErrors {
			resp.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}
