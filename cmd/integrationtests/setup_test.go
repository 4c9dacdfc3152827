package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/escrow"
	"auction-marketplace/internal/managerService"
	"auction-marketplace/internal/payout"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/internal/settlement"
	"auction-marketplace/internal/token"

	"github.com/gin-gonic/gin"
)

// TestClock is an adjustable clock driving auction expiry in tests.
type TestClock struct {
	now atomic.Int64
}

func (c *TestClock) Now() int64      { return c.now.Load() }
func (c *TestClock) Set(t int64)     { c.now.Store(t) }
func (c *TestClock) Advance(d int64) { c.now.Add(d) }

// TestEnv bundles the router with the collaborators tests need to reach.
type TestEnv struct {
	Router *gin.Engine
	Bank   *token.MemoryBank
	Clock  *TestClock
}

// SetupTestEnv initializes the router over a fresh in-memory ledger and
// bank with a controllable clock.
func SetupTestEnv() *TestEnv {
	gin.SetMode(gin.TestMode)

	ledger := repository.NewMemoryLedger()
	bank := token.NewMemoryBank()
	clock := &TestClock{}
	clock.Set(1_000)

	escrowSvc := escrow.NewService(ledger, bank)
	service := auctionService.NewServiceWithClock(ledger, escrowSvc, bank, clock.Now)
	router := server.SetupRouter(server.Services{
		Market:     service,
		Managers:   managerService.NewService(ledger, bank, service),
		Settlement: settlement.NewServiceWithClock(ledger, bank, escrowSvc, clock.Now),
		Payouts:    payout.NewService(ledger, bank),
	})

	return &TestEnv{Router: router, Bank: bank, Clock: clock}
}

// FundAccount creates and funds a token account in the test bank.
func (e *TestEnv) FundAccount(t *testing.T, address, owner, mint string, amount uint64) {
	t.Helper()
	if err := e.Bank.CreateAccount(address, owner, mint); err != nil {
		t.Fatalf("failed to create account %s: %v", address, err)
	}
	if amount > 0 {
		if err := e.Bank.MintTo(address, amount); err != nil {
			t.Fatalf("failed to fund account %s: %v", address, err)
		}
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}
