package domain

import "errors"

var (
	ErrPurchaseNotFound       = errors.New("purchase not found")
	ErrNotPurchaseOwner       = errors.New("purchase does not belong to user")
	ErrInvalidPurchaseState   = errors.New("invalid purchase status")
	ErrSagaInProgress         = errors.New("purchase is being processed by another run")
	ErrOfferNotFound          = errors.New("offer not found")
	ErrOfferNotActive         = errors.New("offer is not active")
	ErrNoSlotsAvailable       = errors.New("no slots available")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrPaymentFailed          = errors.New("payment failed")
	ErrPaymentPending         = errors.New("payment pending")
	ErrInvalidPaymentEvent    = errors.New("invalid payment event")
	ErrAccessNotProvided      = errors.New("access was not provided yet")
	ErrAccessAlreadyConfirmed = errors.New("access already confirmed")
	ErrTokenNotFound          = errors.New("access token not found")
	ErrTokenExpired           = errors.New("access token expired")
	ErrTokenAlreadyUsed       = errors.New("access token already used")
	ErrDisputeNotFound        = errors.New("dispute not found")
	ErrNotificationExists     = errors.New("notification already exists")
	ErrInvalidSignature       = errors.New("invalid webhook signature")
	ErrUnauthenticated        = errors.New("unauthenticated")
)
