package request

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FirstName       string  `json:"first_name" binding:"required,max=255"`
	LastName        string  `json:"last_name" binding:"max=255"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required"`
	PasswordConfirm string  `json:"password_confirm" binding:"required,eqfield=Password"`
	ShopName        *string `json:"shop_name" binding:"omitempty,max=255"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest carries the profile and printed shop details
type UpdateProfileRequest struct {
	FirstName   string  `json:"first_name" binding:"required,max=255"`
	LastName    string  `json:"last_name" binding:"max=255"`
	Username    string  `json:"username" binding:"omitempty,max=255"`
	Photo       *string `json:"photo"`
	ShopName    *string `json:"shop_name" binding:"omitempty,max=255"`
	ShopAddress *string `json:"shop_address"`
	ShopPhone   *string `json:"shop_phone" binding:"omitempty,max=50"`
}
