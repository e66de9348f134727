package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/optica-api/internal/application/service"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/request"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/response"
	"github.com/sangkips/optica-api/pkg/apperror"
)

// SubscriptionHandler serves the owner's subscription status and the
// super admin management endpoints.
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Me returns the caller's subscription status
func (h *SubscriptionHandler) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	view, err := h.subscriptionService.GetStatus(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Subscription retrieved successfully", view)
}

// List handles listing subscriptions across all shops
func (h *SubscriptionHandler) List(c *gin.Context) {
	var status *enum.SubscriptionStatus
	if raw := c.Query("status"); raw != "" {
		s, err := enum.ParseSubscriptionStatus(raw)
		if err != nil {
			response.ValidationError(c, []apperror.FieldError{{Field: "status", Message: "Unknown subscription status"}})
			return
		}
		status = &s
	}

	result, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), pageParams(c), c.Query("search"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Subscriptions retrieved successfully", result)
}

// Update changes a subscription and records an audit entry
func (h *SubscriptionHandler) Update(c *gin.Context) {
	adminID := GetUserID(c)
	if adminID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := paramID(c, "subscription")
	if !ok {
		return
	}

	var req request.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateSubscriptionInput{EndDate: req.EndDate, Notes: req.Notes}
	var fields []apperror.FieldError
	if req.Type != nil {
		t, err := enum.ParseSubscriptionType(*req.Type)
		if err != nil {
			fields = append(fields, apperror.FieldError{Field: "type", Message: "Unknown subscription type"})
		}
		input.Type = &t
	}
	if req.Status != nil {
		s, err := enum.ParseSubscriptionStatus(*req.Status)
		if err != nil {
			fields = append(fields, apperror.FieldError{Field: "status", Message: "Unknown subscription status"})
		}
		input.Status = &s
	}
	if len(fields) > 0 {
		response.ValidationError(c, fields)
		return
	}

	sub, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), *adminID, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Subscription updated successfully", sub)
}

// AuditLogs lists subscription changes, optionally for one subscription
func (h *SubscriptionHandler) AuditLogs(c *gin.Context) {
	var subscriptionID *uuid.UUID
	if raw := c.Query("subscription_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid subscription ID")
			return
		}
		subscriptionID = &id
	}

	result, err := h.subscriptionService.ListAuditLogs(c.Request.Context(), pageParams(c), subscriptionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Audit logs retrieved successfully", result)
}
