// internal/api/handlers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/rabbit-labs/launchpad/internal/engine"
	"github.com/rabbit-labs/launchpad/internal/ledger"
)

// Amounts travel as decimal strings on the wire; 256-bit values do not fit
// JSON numbers.

type createInstrumentRequest struct {
	Name        string `json:"name" binding:"required"`
	Symbol      string `json:"symbol" binding:"required"`
	MetadataRef string `json:"metadata_ref"`
	Creator     string `json:"creator" binding:"required"`
	FeePayment  string `json:"fee_payment" binding:"required"`
}

type tradeRequest struct {
	Actor     string `json:"actor" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	MinOutput string `json:"min_output"`
}

type adminRequest struct {
	Caller string `json:"caller" binding:"required"`
}

type treasuryChangeRequest struct {
	Caller      string `json:"caller" binding:"required"`
	NewTreasury string `json:"new_treasury"`
}

type instrumentResponse struct {
	ID           string     `json:"id"`
	Creator      string     `json:"creator"`
	Name         string     `json:"name"`
	Symbol       string     `json:"symbol"`
	MetadataRef  string     `json:"metadata_ref,omitempty"`
	InitialPrice string     `json:"initial_price"`
	Slope        string     `json:"slope"`
	SoldSupply   string     `json:"sold_supply"`
	NetReserve   string     `json:"net_reserve"`
	Graduated    bool       `json:"graduated"`
	CreatedAt    time.Time  `json:"created_at"`
	GraduatedAt  *time.Time `json:"graduated_at,omitempty"`
}

func toInstrumentResponse(inst *ledger.Instrument) instrumentResponse {
	resp := instrumentResponse{
		ID:           inst.ID,
		Creator:      inst.Creator,
		Name:         inst.Name,
		Symbol:       inst.Symbol,
		MetadataRef:  inst.MetadataRef,
		InitialPrice: inst.InitialPrice.Dec(),
		Slope:        inst.Slope.Dec(),
		SoldSupply:   inst.SoldSupply.Dec(),
		NetReserve:   inst.NetReserve.Dec(),
		Graduated:    inst.Graduated,
		CreatedAt:    inst.CreatedAt,
	}
	if inst.Graduated {
		at := inst.GraduatedAt
		resp.GraduatedAt = &at
	}
	return resp
}

func parseAmount(c *gin.Context, field, value string) (*uint256.Int, bool) {
	if value == "" {
		return uint256.NewInt(0), true
	}
	amount, err := uint256.FromDecimal(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field + ": " + err.Error()})
		return nil, false
	}
	return amount, true
}

func (s *Server) createInstrument(c *gin.Context) {
	var req createInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fee, ok := parseAmount(c, "fee_payment", req.FeePayment)
	if !ok {
		return
	}

	id, err := s.engine.CreateInstrument(c.Request.Context(), engine.CreateRequest{
		Name:        req.Name,
		Symbol:      req.Symbol,
		MetadataRef: req.MetadataRef,
		Creator:     req.Creator,
		FeePayment:  fee,
	})
	if err != nil {
		s.writeError(c, "create_instrument", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) listInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instruments": s.engine.AllInstrumentIDs()})
}

func (s *Server) getInstrument(c *gin.Context) {
	inst, err := s.engine.InstrumentInfo(c.Param("id"))
	if err != nil {
		s.writeError(c, "get_instrument", err)
		return
	}
	c.JSON(http.StatusOK, toInstrumentResponse(inst))
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.engine.Stats(c.Param("id"))
	if err != nil {
		s.writeError(c, "get_stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current_price": stats.CurrentPrice.Dec(),
		"market_cap":    stats.MarketCap.Dec(),
		"progress_bp":   stats.ProgressBp,
		"graduated":     stats.Graduated,
	})
}

func (s *Server) buy(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, ok := parseAmount(c, "amount", req.Amount)
	if !ok {
		return
	}
	minOut, ok := parseAmount(c, "min_output", req.MinOutput)
	if !ok {
		return
	}

	result, err := s.engine.Buy(c.Request.Context(), c.Param("id"), payment, minOut, req.Actor)
	if err != nil {
		s.writeError(c, "buy", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token_amount": result.TokenAmount.Dec(),
		"net_payment":  result.NetPayment.Dec(),
		"platform_fee": result.PlatformFee.Dec(),
		"creator_fee":  result.CreatorFee.Dec(),
		"graduated":    result.Graduated,
	})
}

func (s *Server) sell(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tokens, ok := parseAmount(c, "amount", req.Amount)
	if !ok {
		return
	}
	minOut, ok := parseAmount(c, "min_output", req.MinOutput)
	if !ok {
		return
	}

	result, err := s.engine.Sell(c.Request.Context(), c.Param("id"), tokens, minOut, req.Actor)
	if err != nil {
		s.writeError(c, "sell", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gross_proceeds": result.GrossProceeds.Dec(),
		"net_payment":    result.NetPayment.Dec(),
		"platform_fee":   result.PlatformFee.Dec(),
		"creator_fee":    result.CreatorFee.Dec(),
	})
}

func (s *Server) graduate(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.Graduate(c.Request.Context(), c.Param("id"), req.Caller); err != nil {
		s.writeError(c, "graduate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"graduated": true})
}

func (s *Server) pause(c *gin.Context) {
	s.adminCall(c, "pause", s.engine.Guard().Pause)
}

func (s *Server) unpause(c *gin.Context) {
	s.adminCall(c, "unpause", s.engine.Guard().Unpause)
}

func (s *Server) activateEmergency(c *gin.Context) {
	s.adminCall(c, "activate_emergency", s.engine.Guard().ActivateEmergencyMode)
}

func (s *Server) deactivateEmergency(c *gin.Context) {
	s.adminCall(c, "deactivate_emergency", s.engine.Guard().DeactivateEmergencyMode)
}

func (s *Server) adminCall(c *gin.Context, operation string, call func(string) error) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := call(req.Caller); err != nil {
		s.writeError(c, operation, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paused":    s.engine.Guard().Paused(),
		"emergency": s.engine.Guard().EmergencyMode(),
	})
}

func (s *Server) initiateTreasuryChange(c *gin.Context) {
	var req treasuryChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.Guard().InitiateTreasuryChange(req.Caller, req.NewTreasury); err != nil {
		s.writeError(c, "treasury_initiate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_treasury": req.NewTreasury})
}

func (s *Server) completeTreasuryChange(c *gin.Context) {
	var req treasuryChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.Guard().CompleteTreasuryChange(req.Caller); err != nil {
		s.writeError(c, "treasury_complete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"treasury": s.engine.Guard().Treasury()})
}
