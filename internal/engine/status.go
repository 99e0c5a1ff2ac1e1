package engine

import (
	"context"

	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

// Resolution — итог каскадного поиска тикета: классификация плюс самая
// богатая запись, которую удалось достать. Заполнено ровно одно из полей
// Position/Pending/Order/Deal, для NOT_FOUND — ни одного.
type Resolution struct {
	Ticket   int64
	Status   models.Status
	State    models.Status
	Position *models.Position
	Pending  *models.PendingOrder
	Order    *models.HistoricalOrder
	Deal     *models.HistoricalDeal
}

type lookupFn func(ctx context.Context, ticket int64) (*Resolution, error)

// ResolveStatus опрашивает источники от дешёвых к дорогим: живые позиции,
// отложенные ордера, исторические ордера, исторические сделки. Первый
// найденный источник выигрывает, тикет не существует разом в двух живых.
// "Не нашли на этапе" — не ошибка; транспортный сбой обрывает весь каскад.
func (e *Engine) ResolveStatus(ctx context.Context, ticket int64) (*Resolution, error) {
	lookups := []lookupFn{
		e.lookupPosition,
		e.lookupPendingOrder,
		e.lookupHistoryOrder,
		e.lookupHistoryDeal,
	}

	for _, lookup := range lookups {
		res, err := lookup(ctx, ticket)
		if err != nil {
			return nil, err
		}
		if res != nil {
			e.log.WithTicket(ticket).WithField("status", res.Status).Info("Статус тикета определён.")
			return res, nil
		}
	}

	e.log.WithTicket(ticket).Warn("Тикет не найден ни в одном источнике терминала.")
	return &Resolution{Ticket: ticket, Status: models.StatusNotFound}, nil
}

func (e *Engine) lookupPosition(ctx context.Context, ticket int64) (*Resolution, error) {
	positions, err := e.client.Positions(ctx, terminal.PositionFilter{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, nil
	}
	return &Resolution{
		Ticket:   ticket,
		Status:   models.StatusActive,
		State:    models.StatusFilled,
		Position: &positions[0],
	}, nil
}

func (e *Engine) lookupPendingOrder(ctx context.Context, ticket int64) (*Resolution, error) {
	orders, err := e.client.PendingOrders(ctx, ticket)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &Resolution{
		Ticket:  ticket,
		Status:  models.StatusPending,
		Pending: &orders[0],
	}, nil
}

func (e *Engine) lookupHistoryOrder(ctx context.Context, ticket int64) (*Resolution, error) {
	from, to := e.lookbackWindow()
	orders, err := e.client.HistoryOrders(ctx, from, to, ticket)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &Resolution{
		Ticket: ticket,
		Status: models.StatusFromOrderState(orders[0].State),
		Order:  &orders[0],
	}, nil
}

func (e *Engine) lookupHistoryDeal(ctx context.Context, ticket int64) (*Resolution, error) {
	from, to := e.lookbackWindow()
	deals, err := e.client.HistoryDeals(ctx, from, to, ticket)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, nil
	}
	// У сделки свой первичный тикет; наружу отдаём исходный тикет ордера.
	return &Resolution{
		Ticket: ticket,
		Status: models.StatusClosed,
		Deal:   &deals[0],
	}, nil
}
