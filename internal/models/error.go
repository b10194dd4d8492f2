package models

// ErrorResponse is the body of every failed request.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// example: Invalid credentials
	Error string `json:"error"`
}

// StatusResponse reports which credential store answers queries.
// swagger:model StatusResponse
type StatusResponse struct {
	// example: primary
	Database string `json:"database"`
}
