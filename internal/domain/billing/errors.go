package billing

import "errors"

var (
	ErrPlanNotFound      = errors.New("subscription plan not found")
	ErrAlreadySubscribed = errors.New("user is already subscribed to this plan")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
)
