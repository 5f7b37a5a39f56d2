package models

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  int               `json:"status"`           // HTTP Status Code
	Message string            `json:"message"`          // human readable summary
	Errors  map[string]string `json:"errors,omitempty"` // field -> reason
}
