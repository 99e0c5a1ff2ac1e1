package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mtbridge/internal/models"
)

// PositionFilter сужает выборку живых позиций. Нулевые значения — без фильтра.
type PositionFilter struct {
	Ticket int64
	Magic  int64
	Symbol string
}

// Client — набор операций торгового терминала, которые использует мост.
// "Нет данных" для запросов выборки — это пустой срез, а не ошибка;
// недоступность терминала всегда оборачивается в TransportError.
type Client interface {
	Ping(ctx context.Context) error
	Tick(ctx context.Context, symbol string) (models.Tick, error)
	RatesFromPos(ctx context.Context, symbol string, tf models.Timeframe, start, count int) ([]models.Bar, error)
	RatesRange(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error)
	Positions(ctx context.Context, filter PositionFilter) ([]models.Position, error)
	PositionsTotal(ctx context.Context) (int, error)
	PendingOrders(ctx context.Context, ticket int64) ([]models.PendingOrder, error)
	HistoryOrders(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalOrder, error)
	HistoryDeals(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalDeal, error)
	Send(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error)
	LastError(ctx context.Context) (models.TerminalError, error)
}

// ErrNoTick — терминал не знает символ либо по нему нет котировки.
var ErrNoTick = errors.New("нет тиковых данных по символу")

// TransportError означает, что до терминала не удалось достучаться или он
// не вернул результат вовсе. Отличается от делового отказа терминала
// (ненулевой retcode в TradeResult) и обрывает каскад статусов целиком.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("терминал недоступен (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport сообщает, является ли ошибка транспортной.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
