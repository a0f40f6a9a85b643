package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rabbit-labs/launchpad/internal/engine"
	"github.com/rabbit-labs/launchpad/internal/guard"
	"github.com/rabbit-labs/launchpad/internal/ledger"
)

const (
	testOwner    = "owner-1"
	testTreasury = "treasury-1"
	testVenue    = "venue-1"
	testCreator  = "creator-1"
	testBuyer    = "buyer-1"
)

const oneReserve = 1_000_000_000

func newTestRouter(t *testing.T) (*gin.Engine, *engine.Engine) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	g, err := guard.New(guard.Config{
		Owner:             testOwner,
		Treasury:          testTreasury,
		EmergencyCooldown: 24 * time.Hour,
		TreasuryDelay:     48 * time.Hour,
	}, logger)
	require.NoError(t, err)

	eng, err := engine.New(engine.Params{
		PlatformFeeBp:   100,
		CreatorFeeBp:    25,
		CreateFee:       uint256.NewInt(oneReserve / 10),
		RaiseTarget:     uint256.NewInt(5 * oneReserve),
		MaxCurveSupply:  uint256.NewInt(1e15),
		VenueAllocation: uint256.NewInt(2e14),
		Venue:           testVenue,
		InitialPrice:    uint256.NewInt(1e10),
		Slope:           uint256.NewInt(7),
	}, ledger.NewRegistry(logger), ledger.NewBook(), g, nil, logger)
	require.NoError(t, err)

	server := NewServer(eng, nil, logger)
	return server.Router(), eng
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createViaAPI(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/instruments", gin.H{
		"name":        "Rabbit Token",
		"symbol":      "RBT",
		"creator":     testCreator,
		"fee_payment": "100000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestCreateAndGetInstrument(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createViaAPI(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/instruments/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp instrumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "RBT", resp.Symbol)
	assert.Equal(t, "0", resp.SoldSupply)
	assert.False(t, resp.Graduated)
}

func TestGetUnknownInstrument(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/instruments/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuyThroughAPI(t *testing.T) {
	router, eng := newTestRouter(t)
	id := createViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/buy", gin.H{
		"actor":  testBuyer,
		"amount": fmt.Sprintf("%d", oneReserve),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TokenAmount string `json:"token_amount"`
		PlatformFee string `json:"platform_fee"`
		CreatorFee  string `json:"creator_fee"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "10000000", resp.PlatformFee)
	assert.Equal(t, "2500000", resp.CreatorFee)
	assert.NotEqual(t, "0", resp.TokenAmount)

	assert.False(t, eng.Book().TokenBalance(id, testBuyer).IsZero())
}

func TestBuyValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createViaAPI(t, router)

	// Malformed amount.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/buy", gin.H{
		"actor":  testBuyer,
		"amount": "not-a-number",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Zero payment.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/buy", gin.H{
		"actor":  testBuyer,
		"amount": "0",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unmet slippage bound.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/buy", gin.H{
		"actor":      testBuyer,
		"amount":     fmt.Sprintf("%d", oneReserve),
		"min_output": "99999999999999999999",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSellThroughAPI(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/buy", gin.H{
		"actor":  testBuyer,
		"amount": fmt.Sprintf("%d", oneReserve),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var buyResp struct {
		TokenAmount string `json:"token_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buyResp))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/sell", gin.H{
		"actor":  testBuyer,
		"amount": buyResp.TokenAmount,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sellResp struct {
		NetPayment string `json:"net_payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sellResp))
	assert.NotEqual(t, "0", sellResp.NetPayment)
}

func TestSellMoreThanHeld(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/sell", gin.H{
		"actor":  testBuyer,
		"amount": "12345",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createViaAPI(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/instruments/"+id+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CurrentPrice string `json:"current_price"`
		ProgressBp   uint64 `json:"progress_bp"`
		Graduated    bool   `json:"graduated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "10000000000", resp.CurrentPrice)
	assert.Zero(t, resp.ProgressBp)
	assert.False(t, resp.Graduated)
}

func TestGraduateEndpointGuards(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/graduate", gin.H{
		"caller": "intruder",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/graduate", gin.H{
		"caller": testOwner,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminPauseBlocksTrading(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/pause", gin.H{"caller": testOwner})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/buy", gin.H{
		"actor":  testBuyer,
		"amount": "1000",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Reads keep working while paused.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/instruments/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/unpause", gin.H{"caller": testOwner})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/instruments/"+id+"/buy", gin.H{
		"actor":  testBuyer,
		"amount": "1000000",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminRequiresOwner(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/pause", gin.H{"caller": "intruder"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/emergency/activate", gin.H{"caller": "intruder"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTreasuryChangeEndpoints(t *testing.T) {
	router, eng := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/treasury/initiate", gin.H{
		"caller":       testOwner,
		"new_treasury": "treasury-2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Completion before the delay elapses is refused.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/treasury/complete", gin.H{
		"caller": testOwner,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, testTreasury, eng.Guard().Treasury())
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
