// internal/engine/errors.go
package engine

import "errors"

// Validation errors: the request itself is malformed.
var (
	ErrInvalidIdentity   = errors.New("invalid identity")
	ErrZeroPayment       = errors.New("payment must be positive")
	ErrNameLength        = errors.New("name length out of bounds")
	ErrSymbolLength      = errors.New("symbol length out of bounds")
	ErrMaxSupplyExceeded = errors.New("buy would exceed the maximum curve supply")
)

// Economic errors: the request is well-formed but the numbers do not work.
var (
	ErrInsufficientCreateFee = errors.New("create fee payment is insufficient")
	ErrPaymentTooSmall       = errors.New("net payment buys zero tokens")
	ErrSlippage              = errors.New("slippage bound not met")
	ErrFeeTransfer           = errors.New("fee transfer failed")
	ErrReserveShortfall      = errors.New("instrument reserve cannot cover proceeds")
)

// State errors: the instrument is in a phase that forbids the operation.
var (
	ErrGraduated          = errors.New("instrument has graduated")
	ErrNotReadyToGraduate = errors.New("graduation threshold not yet met")
)
