package service

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrGatewayUnsupported     = errors.New("gateway is not supported")
	ErrGatewayRejected        = errors.New("gateway rejected the payment")
	ErrCallbackRejected       = errors.New("callback rejected")
	ErrPaymentAlreadyVerified = errors.New("payment has already been verified")
)
