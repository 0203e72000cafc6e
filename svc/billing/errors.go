package billing

import "errors"

var (
	ErrPaymentVerificationFailed = errors.New("payment verification failed, plan unchanged")
	ErrPaymentPlanMismatch       = errors.New("payment was made for a different plan")
	ErrUpgradeToFreePlan         = errors.New("cannot upgrade to the free plan")
)
