package engine

import (
	"context"
	"time"

	"mtbridge/internal/config"
	"mtbridge/internal/logger"
	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

// stubTerminal — подменный клиент терминала: поведение задаётся функциями,
// отправленные торговые запросы записываются.
type stubTerminal struct {
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

func (s *stubTerminal) Ping(ctx context.Context) error {
	if s.pingFn == nil {
		return nil
	}
	return s.pingFn(ctx)
}

func (s *stubTerminal) Tick(ctx context.Context, symbol string) (models.Tick, error) {
	if s.tickFn == nil {
		return models.Tick{}, terminal.ErrNoTick
	}
	return s.tickFn(ctx, symbol)
}

func (s *stubTerminal) RatesFromPos(ctx context.Context, symbol string, tf models.Timeframe, start, count int) ([]models.Bar, error) {
	if s.ratesFromPosFn == nil {
		return nil, nil
	}
	return s.ratesFromPosFn(ctx, symbol, tf, start, count)
}

func (s *stubTerminal) RatesRange(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error) {
	if s.ratesRangeFn == nil {
		return nil, nil
	}
	return s.ratesRangeFn(ctx, symbol, tf, from, to)
}

func (s *stubTerminal) Positions(ctx context.Context, filter terminal.PositionFilter) ([]models.Position, error) {
	if s.positionsFn == nil {
		return nil, nil
	}
	return s.positionsFn(ctx, filter)
}

func (s *stubTerminal) PositionsTotal(ctx context.Context) (int, error) {
	if s.positionsTotalFn == nil {
		return 0, nil
	}
	return s.positionsTotalFn(ctx)
}

func (s *stubTerminal) PendingOrders(ctx context.Context, ticket int64) ([]models.PendingOrder, error) {
	if s.pendingOrdersFn == nil {
		return nil, nil
	}
	return s.pendingOrdersFn(ctx, ticket)
}

func (s *stubTerminal) HistoryOrders(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalOrder, error) {
	if s.historyOrdersFn == nil {
		return nil, nil
	}
	return s.historyOrdersFn(ctx, from, to, ticket)
}

func (s *stubTerminal) HistoryDeals(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalDeal, error) {
	if s.historyDealsFn == nil {
		return nil, nil
	}
	return s.historyDealsFn(ctx, from, to, ticket)
}

func (s *stubTerminal) Send(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	s.sentRequests = append(s.sentRequests, req)
	if s.sendFn == nil {
		return &models.TradeResult{Retcode: models.TradeRetcodeDone}, nil
	}
	return s.sendFn(ctx, req)
}

func (s *stubTerminal) LastError(ctx context.Context) (models.TerminalError, error) {
	if s.lastErrorFn == nil {
		return models.TerminalError{}, nil
	}
	return s.lastErrorFn(ctx)
}

func newTestEngine(client terminal.Client) *Engine {
	cfg := &config.Config{}
	cfg.Trade.Deviation = 20
	cfg.Trade.Magic = 23400
	cfg.Trade.Comment = "n8n_trade"
	cfg.Trade.HistoryLookbackDays = 7
	cfg.Terminal.ReadyAttempts = 1

	log := logger.New(logger.Config{Level: "fatal"})
	return New(cfg, client, log)
}
