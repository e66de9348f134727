package request

import "time"

// UpdateSubscriptionRequest is an admin change to a shop's subscription
type UpdateSubscriptionRequest struct {
	EndDate *time.Time `json:"end_date"`
	Type    *string    `json:"type"`
	Status  *string    `json:"status"`
	Notes   *string    `json:"notes" binding:"omitempty,max=1000"`
}
