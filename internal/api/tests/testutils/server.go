package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/handlers"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/routes"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/ledger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/marketdata"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/matching"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/recorder"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage/memory"
)

// TestServer wraps a test HTTP server with the full exchange stack on
// in-memory stores
type TestServer struct {
	Server   *httptest.Server
	Ledger   *ledger.Ledger
	Engines  *matching.EngineSet
	Recorder *recorder.Recorder
	t        testing.TB
}

// NewTestServer creates a new test server with fresh state
func NewTestServer(t testing.TB) *TestServer {
	book := ledger.New(memory.NewBalanceStore())
	orders := memory.NewOrderStore(10000)
	trades := memory.NewTradeStore(1000)
	events := memory.NewEventStore()

	rec := recorder.New(events, recorder.Options{})
	market := marketdata.NewPublisher(12, nil, nil)

	engines := matching.NewEngineSet(matching.Deps{
		Ledger:      book,
		Orders:      orders,
		Trades:      trades,
		Events:      rec,
		Market:      market,
		Band:        1.05,
		DepthLevels: 20,
	})

	h := &handlers.Handler{
		Engines:          engines,
		Ledger:           book,
		Market:           market,
		Orders:           orders,
		Events:           events,
		Recorder:         rec,
		DefaultQuote:     "usdt",
		DefaultPageSize:  10,
		MaxPageSize:      100,
		RecentTradeLimit: 12,
		MaxDepthLevels:   50,
		Version:          "test",
		StartedAt:        time.Now().UTC(),
	}

	handler := routes.Setup(h, nil, []string{"*"})
	server := httptest.NewServer(handler)

	return &TestServer{
		Server:   server,
		Ledger:   book,
		Engines:  engines,
		Recorder: rec,
		t:        t,
	}
}

// Close cleans up the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Recorder.Close()
}

// URL returns the base URL for the test server
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Get makes a GET request to the test server
func (ts *TestServer) Get(path string) *http.Response {
	resp, err := http.Get(ts.URL() + path)
	require.NoError(ts.t, err, "GET request failed")
	return resp
}

// Post makes a POST request with JSON body
func (ts *TestServer) Post(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "Failed to marshal request body")

	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// Delete makes a DELETE request
func (ts *TestServer) Delete(path string) *http.Response {
	req, err := http.NewRequest(http.MethodDelete, ts.URL()+path, nil)
	require.NoError(ts.t, err, "Failed to build DELETE request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err, "DELETE request failed")
	return resp
}

// Fund credits a user balance directly through the ledger
func (ts *TestServer) Fund(userID, tokenID string, amount float64) {
	require.NoError(ts.t, ts.Ledger.Deposit(userID, tokenID, amount), "Fund failed")
}
