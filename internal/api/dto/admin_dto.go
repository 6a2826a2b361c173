package dto

// AdminLoginRequest carries counsellor credentials.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginResponse returns the bearer token and identity.
type AdminLoginResponse struct {
	Token         string `json:"token"`
	AdminID       string `json:"admin_id"`
	InstitutionID string `json:"institution_id"`
}
