package user

type NameChangeRequest struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name" binding:"required,min=2,max=32"`
}

type PasswordChangeRequest struct {
	UserID             string `json:"userId" binding:"required"`
	CurrentPassword    string `json:"currentPassword" binding:"required,min=8,max=32"`
	NewPassword        string `json:"newPassword" binding:"required,min=8,max=32"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required,eqfield=NewPassword"`
}
