package request

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ScanRequest is the request body for submitting a location code
type ScanRequest struct {
	Code string `json:"code" validate:"required,max=256"`
}

// CreateUserRequest is the request body for creating a player
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// UpdateUserRequest is the request body for editing a player.
// Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Active   *bool   `json:"active"`
	Password *string `json:"password" validate:"omitempty,min=1,max=72"`
}
