package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

// CloseSpec — данные позиции для закрытия, когда клиент передаёт запись
// целиком и живой поиск не нужен.
type CloseSpec struct {
	Ticket int64
	Type   models.PositionType
	Symbol string
	Volume float64
}

// CloseFilter сужает массовое закрытие. Side: "BUY", "SELL" или "all".
type CloseFilter struct {
	Side  string
	Magic int64
}

// CloseOutcome — исход одной попытки закрытия при массовом закрытии.
// Частичный успех не схлопывается: по записи на каждую позицию.
type CloseOutcome struct {
	Ticket  int64               `json:"ticket"`
	Symbol  string              `json:"symbol"`
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Result  *models.TradeResult `json:"result,omitempty"`
}

// Positions отдаёт открытые позиции, при magic != 0 — только этой стратегии.
func (e *Engine) Positions(ctx context.Context, magic int64) ([]models.Position, error) {
	return e.client.Positions(ctx, terminal.PositionFilter{Magic: magic})
}

func (e *Engine) PositionsTotal(ctx context.Context) (int, error) {
	return e.client.PositionsTotal(ctx)
}

// ClosePositionByTicket находит живую позицию по тикету и гасит её целиком
// встречной рыночной сделкой.
func (e *Engine) ClosePositionByTicket(ctx context.Context, ticket int64) (*models.TradeResult, error) {
	positions, err := e.client.Positions(ctx, terminal.PositionFilter{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, ErrPositionNotFound
	}

	pos := positions[0]
	return e.ClosePosition(ctx, CloseSpec{
		Ticket: pos.Ticket,
		Type:   pos.Type,
		Symbol: pos.Symbol,
		Volume: pos.Volume,
	})
}

// ClosePosition отправляет встречную сделку на весь объём: для покупки —
// продажу по ask, для продажи — покупку по bid.
func (e *Engine) ClosePosition(ctx context.Context, spec CloseSpec) (*models.TradeResult, error) {
	closeType := spec.Type.ClosingOrderType()

	tick, err := e.client.Tick(ctx, spec.Symbol)
	if err != nil {
		if errors.Is(err, terminal.ErrNoTick) {
			return nil, ErrTickUnavailable
		}
		return nil, err
	}

	price := tick.Bid
	if closeType == models.OrderTypeSell {
		price = tick.Ask
	}

	e.log.WithTicket(spec.Ticket).WithFields(map[string]interface{}{
		"symbol": spec.Symbol,
		"volume": spec.Volume,
		"price":  price,
	}).Info("Закрытие позиции встречной сделкой.")

	return e.send(ctx, models.TradeRequest{
		Action:      models.TradeActionDeal,
		Position:    spec.Ticket,
		Symbol:      spec.Symbol,
		Volume:      spec.Volume,
		Type:        closeType,
		Price:       price,
		Deviation:   e.cfg.Trade.Deviation,
		Comment:     fmt.Sprintf("Closed by API #%d", spec.Ticket),
		TypeTime:    models.OrderTimeGTC,
		TypeFilling: models.OrderFillingIOC,
	})
}

// CloseAllPositions закрывает каждую подходящую позицию по очереди и
// собирает исход каждой попытки. Позиции вне фильтра не трогаются и в
// список не попадают.
func (e *Engine) CloseAllPositions(ctx context.Context, filter CloseFilter) ([]CloseOutcome, error) {
	positions, err := e.client.Positions(ctx, terminal.PositionFilter{Magic: filter.Magic})
	if err != nil {
		return nil, err
	}

	var outcomes []CloseOutcome
	for _, pos := range positions {
		if !matchesSide(pos.Type, filter.Side) {
			continue
		}

		outcome := CloseOutcome{Ticket: pos.Ticket, Symbol: pos.Symbol}
		result, err := e.ClosePosition(ctx, CloseSpec{
			Ticket: pos.Ticket,
			Type:   pos.Type,
			Symbol: pos.Symbol,
			Volume: pos.Volume,
		})
		if err != nil {
			outcome.Error = err.Error()
			var rej *RejectionError
			if errors.As(err, &rej) {
				outcome.Result = rej.Result
			}
			e.log.WithTicket(pos.Ticket).WithError(err).Error("Не удалось закрыть позицию.")
		} else {
			outcome.Success = true
			outcome.Result = result
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// ModifySLTP меняет стоп-лосс и/или тейк-профит живой позиции. Хотя бы одно
// из значений обязано быть задано.
func (e *Engine) ModifySLTP(ctx context.Context, ticket int64, sl, tp float64) (*models.TradeResult, error) {
	if sl == 0 && tp == 0 {
		return nil, errValidation("Anda harus menyediakan nilai 'sl' atau 'tp'")
	}

	positions, err := e.client.Positions(ctx, terminal.PositionFilter{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, ErrPositionNotFound
	}

	e.log.WithTicket(ticket).WithFields(map[string]interface{}{
		"sl": sl,
		"tp": tp,
	}).Info("Изменение SL/TP позиции.")

	return e.send(ctx, models.TradeRequest{
		Action:   models.TradeActionSLTP,
		Position: ticket,
		Symbol:   positions[0].Symbol,
		SL:       sl,
		TP:       tp,
	})
}

func matchesSide(posType models.PositionType, side string) bool {
	switch strings.ToUpper(side) {
	case "BUY":
		return posType == models.PositionTypeBuy
	case "SELL":
		return posType == models.PositionTypeSell
	default:
		return true
	}
}
