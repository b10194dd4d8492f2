package models

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// example: alice
	Username string `json:"username"`

	// Email
	// required: true
	// example: a@x.com
	Email string `json:"email"`

	// Phone
	// example: +15550100
	Phone string `json:"phone,omitempty"`

	// Password
	// required: true
	// example: pw123456
	Password string `json:"password"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Success message
	// example: User registered
	Message string `json:"message"`
}
