package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/optica-api/internal/application/service"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/internal/domain/pricing"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/request"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/response"
	"github.com/sangkips/optica-api/pkg/apperror"
	"github.com/sangkips/optica-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

// ReceiptHandler handles receipt-related HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
	printerService *service.PrinterService
	loc            *time.Location
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService, printerService *service.PrinterService, loc *time.Location) *ReceiptHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReceiptHandler{receiptService: receiptService, printerService: printerService, loc: loc}
}

// parseFilter turns query strings into list filters. Dates are whole days
// in the shop's time zone; end_date is inclusive.
func (h *ReceiptHandler) parseFilter(req request.ReceiptFilterRequest) (service.ListReceiptsInput, []apperror.FieldError) {
	filter := service.ListReceiptsInput{Search: req.Search}
	var fields []apperror.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperror.FieldError{Field: field, Message: msg})
	}

	if req.ClientID != "" {
		if id, err := uuid.Parse(req.ClientID); err == nil {
			filter.ClientID = &id
		} else {
			add("client_id", "Invalid client ID")
		}
	}
	if req.DeliveryStatus != "" {
		if s, err := enum.ParseDeliveryStatus(req.DeliveryStatus); err == nil {
			filter.DeliveryStatus = &s
		} else {
			add("delivery_status", "Unknown delivery status")
		}
	}
	if req.MontageStatus != "" {
		if s, err := enum.ParseMontageStatus(req.MontageStatus); err == nil {
			filter.MontageStatus = &s
		} else {
			add("montage_status", "Unknown montage status")
		}
	}
	if req.StartDate != "" {
		if d, err := time.ParseInLocation(dateLayout, req.StartDate, h.loc); err == nil {
			filter.StartDate = &d
		} else {
			add("start_date", "Use YYYY-MM-DD")
		}
	}
	if req.EndDate != "" {
		if d, err := time.ParseInLocation(dateLayout, req.EndDate, h.loc); err == nil {
			end := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filter.EndDate = &end
		} else {
			add("end_date", "Use YYYY-MM-DD")
		}
	}
	return filter, fields
}

// List handles listing receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	var req request.ReceiptFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	filter, fields := h.parseFilter(req)
	if len(fields) > 0 {
		response.ValidationError(c, fields)
		return
	}

	params := &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage}
	params.Validate()

	result, err := h.receiptService.ListReceipts(c.Request.Context(), params, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Receipts retrieved successfully", result)
}

// Create handles creating a receipt
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req request.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.CreateReceiptInput{
		ClientID:       req.ClientID,
		TaxInput:       req.Tax,
		AdvancePayment: req.AdvancePayment,
		Cost:           req.Cost,
		Prescription:   req.Prescription,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.ReceiptItemInput{
			ProductID:      item.ProductID,
			CustomItemName: item.CustomItemName,
			Quantity:       item.Quantity,
			Price:          item.Price,
		})
	}
	if req.Discount != nil {
		input.Discount = &pricing.Discount{
			Type:  pricing.DiscountType(req.Discount.Type),
			Value: req.Discount.Value,
		}
	}

	result, err := h.receiptService.CreateReceipt(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt created successfully", result)
}

// Get handles getting a receipt by ID
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "receipt")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Update edits the advance, cost, date or prescription of a receipt
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "receipt")
	if !ok {
		return
	}

	var req request.UpdateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	receipt, err := h.receiptService.UpdateReceipt(c.Request.Context(), id, &service.UpdateReceiptInput{
		AdvancePayment: req.AdvancePayment,
		Cost:           req.Cost,
		CreatedAt:      req.CreatedAt,
		Prescription:   req.Prescription,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt updated successfully", receipt)
}

// MarkPaid settles the remaining balance
func (h *ReceiptHandler) MarkPaid(c *gin.Context) {
	id, ok := paramID(c, "receipt")
	if !ok {
		return
	}

	receipt, err := h.receiptService.MarkPaid(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt marked as paid", receipt)
}

// ToggleDelivery flips Delivered and Undelivered
func (h *ReceiptHandler) ToggleDelivery(c *gin.Context) {
	id, ok := paramID(c, "receipt")
	if !ok {
		return
	}

	receipt, err := h.receiptService.ToggleDelivery(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Delivery status updated", receipt)
}

// SetMontageStatus moves the receipt to another montage stage
func (h *ReceiptHandler) SetMontageStatus(c *gin.Context) {
	id, ok := paramID(c, "receipt")
	if !ok {
		return
	}

	var req request.MontageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	status, err := enum.ParseMontageStatus(req.Status)
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "status", Message: "Unknown montage status"}})
		return
	}

	receipt, err := h.receiptService.SetMontageStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Montage status updated", receipt)
}

// Delete removes a receipt and its items
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "receipt")
	if !ok {
		return
	}

	if err := h.receiptService.DeleteReceipt(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt deleted successfully", nil)
}

// Print renders the receipt ticket and sends it to the shop printer.
// The ticket is returned even when printing fails.
func (h *ReceiptHandler) Print(c *gin.Context) {
	id, ok := paramID(c, "receipt")
	if !ok {
		return
	}

	ticket, err := h.printerService.PrintReceipt(c.Request.Context(), id)
	if err != nil {
		if ticket != nil {
			response.OK(c, "Ticket generated but printing failed", gin.H{
				"ticket":  ticket,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	message := "Receipt printed successfully"
	if !ticket.Printed {
		message = "No printer configured, ticket generated for preview"
	}
	response.OK(c, message, gin.H{"ticket": ticket})
}
