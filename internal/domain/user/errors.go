package user

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrSameName      = errors.New("name must be different from the current name")
	ErrWrongPassword = errors.New("current password is incorrect")
)
