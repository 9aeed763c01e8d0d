package auth

// RegisterRequest is the account sign-up payload.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token to exchange for a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// AccessToken is returned by a successful refresh.
type AccessToken struct {
	Access string `json:"access"`
}
