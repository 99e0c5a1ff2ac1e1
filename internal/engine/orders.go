package engine

import (
	"context"

	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

// OrderRequest — валидируемое намерение выставить ордер. Deviation, Magic и
// Comment при нулевых значениях добираются из конфигурации.
type OrderRequest struct {
	Symbol    string
	Volume    float64
	Type      string
	Price     float64
	SL        float64
	TP        float64
	Deviation int
	Magic     int64
	Comment   string
}

// SubmitOrder проверяет намерение, собирает торговый запрос и один раз
// отправляет его терминалу. Никаких повторов: отказ есть отказ.
func (e *Engine) SubmitOrder(ctx context.Context, req OrderRequest) (*models.TradeResult, error) {
	if req.Symbol == "" || req.Volume <= 0 || req.Type == "" {
		return nil, errValidation("Field 'symbol', 'volume', dan 'type' wajib diisi")
	}

	orderType, ok := models.ParseOrderType(req.Type)
	if !ok {
		return nil, errValidation("Tipe order '%s' tidak valid.", req.Type)
	}

	action := models.TradeActionPending
	if orderType.IsMarket() {
		action = models.TradeActionDeal
	}

	treq := models.TradeRequest{
		Action:      action,
		Symbol:      req.Symbol,
		Volume:      req.Volume,
		Type:        orderType,
		Deviation:   req.Deviation,
		Magic:       req.Magic,
		Comment:     req.Comment,
		TypeTime:    models.OrderTimeGTC,
		TypeFilling: models.OrderFillingIOC,
	}

	if treq.Deviation == 0 {
		treq.Deviation = e.cfg.Trade.Deviation
	}
	if treq.Magic == 0 {
		treq.Magic = e.cfg.Trade.Magic
	}
	if treq.Comment == "" {
		treq.Comment = e.cfg.Trade.Comment
	}

	if action == models.TradeActionPending {
		if req.Price <= 0 {
			return nil, errValidation("Parameter 'price' wajib untuk pending order")
		}
		treq.Price = req.Price
	}

	// Ноль значит "не задано", а не "стоп на нуле".
	if req.SL > 0 {
		treq.SL = req.SL
	}
	if req.TP > 0 {
		treq.TP = req.TP
	}

	e.log.WithSymbol(req.Symbol).WithField("type", req.Type).Info("Отправка ордера терминалу.")
	return e.send(ctx, treq)
}

// CancelOrder снимает отложенный ордер по тикету.
func (e *Engine) CancelOrder(ctx context.Context, ticket int64) (*models.TradeResult, error) {
	e.log.WithTicket(ticket).Info("Снятие отложенного ордера.")
	return e.send(ctx, models.TradeRequest{
		Action: models.TradeActionRemove,
		Order:  ticket,
	})
}

// send выполняет единственную отправку и раскладывает исход на три случая:
// транспортный сбой (с диагностикой терминала, если она доступна), деловой
// отказ и успех.
func (e *Engine) send(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	result, err := e.client.Send(ctx, req)
	if err != nil {
		if terminal.IsTransport(err) {
			failure := &TransportFailure{Err: err}
			if diag, diagErr := e.client.LastError(ctx); diagErr == nil {
				failure.Diag = &diag
			}
			e.logEntry().WithError(err).Error("Запрос не дошёл до терминала.")
			return nil, failure
		}
		return nil, err
	}

	if result.Retcode != models.TradeRetcodeDone {
		e.logEntry().WithFields(map[string]interface{}{
			"retcode": result.Retcode,
			"comment": result.Comment,
		}).Error("Терминал отклонил команду.")
		return nil, &RejectionError{Result: result}
	}

	return result, nil
}
