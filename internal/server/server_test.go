package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mtbridge/internal/config"
	"mtbridge/internal/engine"
	"mtbridge/internal/logger"
	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

const testAPIKey = "test-secret"

// fakeTerminal — подменный терминал для маршрутных тестов.
type fakeTerminal struct {
	pingFn           func(ctx context.Context) error
	tickFn           func(ctx context.Context, symbol string) (models.Tick, error)
	ratesFromPosFn   func(ctx context.Context, symbol string, tf models.Timeframe, start, count int) ([]models.Bar, error)
	ratesRangeFn     func(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error)
	positionsFn      func(ctx context.Context, filter terminal.PositionFilter) ([]models.Position, error)
	positionsTotalFn func(ctx context.Context) (int, error)
	pendingOrdersFn  func(ctx context.Context, ticket int64) ([]models.PendingOrder, error)
	historyOrdersFn  func(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalOrder, error)
	historyDealsFn   func(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalDeal, error)
	sendFn           func(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error)
	lastErrorFn      func(ctx context.Context) (models.TerminalError, error)

	sentRequests []models.TradeRequest
}

func (f *fakeTerminal) Ping(ctx context.Context) error {
	if f.pingFn == nil {
		return nil
	}
	return f.pingFn(ctx)
}

func (f *fakeTerminal) Tick(ctx context.Context, symbol string) (models.Tick, error) {
	if f.tickFn == nil {
		return models.Tick{}, terminal.ErrNoTick
	}
	return f.tickFn(ctx, symbol)
}

func (f *fakeTerminal) RatesFromPos(ctx context.Context, symbol string, tf models.Timeframe, start, count int) ([]models.Bar, error) {
	if f.ratesFromPosFn == nil {
		return nil, nil
	}
	return f.ratesFromPosFn(ctx, symbol, tf, start, count)
}

func (f *fakeTerminal) RatesRange(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error) {
	if f.ratesRangeFn == nil {
		return nil, nil
	}
	return f.ratesRangeFn(ctx, symbol, tf, from, to)
}

func (f *fakeTerminal) Positions(ctx context.Context, filter terminal.PositionFilter) ([]models.Position, error) {
	if f.positionsFn == nil {
		return nil, nil
	}
	return f.positionsFn(ctx, filter)
}

func (f *fakeTerminal) PositionsTotal(ctx context.Context) (int, error) {
	if f.positionsTotalFn == nil {
		return 0, nil
	}
	return f.positionsTotalFn(ctx)
}

func (f *fakeTerminal) PendingOrders(ctx context.Context, ticket int64) ([]models.PendingOrder, error) {
	if f.pendingOrdersFn == nil {
		return nil, nil
	}
	return f.pendingOrdersFn(ctx, ticket)
}

func (f *fakeTerminal) HistoryOrders(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalOrder, error) {
	if f.historyOrdersFn == nil {
		return nil, nil
	}
	return f.historyOrdersFn(ctx, from, to, ticket)
}

func (f *fakeTerminal) HistoryDeals(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalDeal, error) {
	if f.historyDealsFn == nil {
		return nil, nil
	}
	return f.historyDealsFn(ctx, from, to, ticket)
}

func (f *fakeTerminal) Send(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	f.sentRequests = append(f.sentRequests, req)
	if f.sendFn == nil {
		return &models.TradeResult{Retcode: models.TradeRetcodeDone}, nil
	}
	return f.sendFn(ctx, req)
}

func (f *fakeTerminal) LastError(ctx context.Context) (models.TerminalError, error) {
	if f.lastErrorFn == nil {
		return models.TerminalError{}, nil
	}
	return f.lastErrorFn(ctx)
}

func newTestServer(term terminal.Client) http.Handler {
	cfg := &config.Config{}
	cfg.Server.APIKey = testAPIKey
	cfg.Trade.Deviation = 20
	cfg.Trade.Magic = 23400
	cfg.Trade.Comment = "n8n_trade"
	cfg.Trade.HistoryLookbackDays = 7

	log := logger.New(logger.Config{Level: "fatal"})
	eng := engine.New(cfg, term, log)
	return New(cfg, eng, term, log).Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body any, withKey bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
