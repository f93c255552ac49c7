package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}
