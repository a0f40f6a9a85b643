// internal/api/errors.go
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rabbit-labs/launchpad/internal/curve"
	"github.com/rabbit-labs/launchpad/internal/engine"
	"github.com/rabbit-labs/launchpad/internal/guard"
	"github.com/rabbit-labs/launchpad/internal/ledger"
)

// writeError maps engine sentinels onto HTTP statuses. Unknown errors are
// logged and reported as 500 without leaking detail.
func (s *Server) writeError(c *gin.Context, operation string, err error) {
	if s.metrics != nil {
		s.metrics.RecordFailure(operation)
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Unhandled engine error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnknownInstrument):
		return http.StatusNotFound
	case errors.Is(err, guard.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, guard.ErrPaused),
		errors.Is(err, guard.ErrEmergency),
		errors.Is(err, guard.ErrAlreadyPaused),
		errors.Is(err, guard.ErrNotPaused),
		errors.Is(err, guard.ErrNoEmergency),
		errors.Is(err, guard.ErrCooldownActive),
		errors.Is(err, guard.ErrNoPendingChange),
		errors.Is(err, guard.ErrDelayNotElapsed):
		return http.StatusConflict
	case errors.Is(err, engine.ErrGraduated),
		errors.Is(err, engine.ErrNotReadyToGraduate),
		errors.Is(err, ledger.ErrInstrumentBusy),
		errors.Is(err, ledger.ErrDuplicateInstrument):
		return http.StatusConflict
	case errors.Is(err, engine.ErrSlippage),
		errors.Is(err, engine.ErrInsufficientCreateFee),
		errors.Is(err, engine.ErrPaymentTooSmall),
		errors.Is(err, engine.ErrReserveShortfall),
		errors.Is(err, ledger.ErrInsufficientTokens),
		errors.Is(err, ledger.ErrInsufficientReserve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidIdentity),
		errors.Is(err, engine.ErrZeroPayment),
		errors.Is(err, engine.ErrNameLength),
		errors.Is(err, engine.ErrSymbolLength),
		errors.Is(err, engine.ErrMaxSupplyExceeded),
		errors.Is(err, guard.ErrInvalidIdentity),
		errors.Is(err, curve.ErrZeroPayment),
		errors.Is(err, curve.ErrZeroAmount),
		errors.Is(err, curve.ErrExceedsSupply):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrFeeTransfer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
