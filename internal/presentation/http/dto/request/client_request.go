package request

// ClientRequest is used for both create and update
type ClientRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Phone string `json:"phone" binding:"required,max=50"`
}
