package dto

// AuthRequest describes login/password payload. Role is only read on
// registration.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}
