package auth

type SignupRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=32"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=32"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// IdentityResponse is the public identity shape returned by login, signup
// and /api/auth/me.
type IdentityResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}
