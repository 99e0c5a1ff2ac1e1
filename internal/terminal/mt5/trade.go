package mt5

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

var errNotConnected = errors.New("терминал не подключен к торговому серверу")

func (c *Client) Positions(ctx context.Context, filter terminal.PositionFilter) ([]models.Position, error) {
	params := url.Values{}
	if filter.Ticket != 0 {
		params.Set("ticket", strconv.FormatInt(filter.Ticket, 10))
	}
	if filter.Magic != 0 {
		params.Set("magic", strconv.FormatInt(filter.Magic, 10))
	}
	if filter.Symbol != "" {
		params.Set("symbol", filter.Symbol)
	}

	var resp mtResponse[[]models.Position]

	if err := c.doRequest(ctx, http.MethodGet, "/positions", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) PositionsTotal(ctx context.Context) (int, error) {
	var resp mtResponse[struct {
		Total int `json:"total"`
	}]

	if err := c.doRequest(ctx, http.MethodGet, "/positions/total", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Data.Total, nil
}

func (c *Client) PendingOrders(ctx context.Context, ticket int64) ([]models.PendingOrder, error) {
	params := url.Values{}
	if ticket != 0 {
		params.Set("ticket", strconv.FormatInt(ticket, 10))
	}

	var resp mtResponse[[]models.PendingOrder]

	if err := c.doRequest(ctx, http.MethodGet, "/orders", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) HistoryOrders(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalOrder, error) {
	params := historyParams(from, to, ticket)

	var resp mtResponse[[]models.HistoricalOrder]

	if err := c.doRequest(ctx, http.MethodGet, "/history/orders", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) HistoryDeals(ctx context.Context, from, to time.Time, ticket int64) ([]models.HistoricalDeal, error) {
	params := historyParams(from, to, ticket)

	var resp mtResponse[[]models.HistoricalDeal]

	if err := c.doRequest(ctx, http.MethodGet, "/history/deals", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Send(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	var resp mtResponse[*models.TradeResult]

	if err := c.doRequest(ctx, http.MethodPost, "/trade", nil, req, &resp); err != nil {
		return nil, err
	}

	// order_send на стороне терминала может вернуть пустой результат —
	// это транспортный отказ, а не деловой.
	if resp.Data == nil {
		return nil, &terminal.TransportError{Op: "/trade", Err: errors.New("терминал не вернул результат order_send")}
	}
	return resp.Data, nil
}

func (c *Client) LastError(ctx context.Context) (models.TerminalError, error) {
	var resp mtResponse[models.TerminalError]

	if err := c.doRequest(ctx, http.MethodGet, "/last_error", nil, nil, &resp); err != nil {
		return models.TerminalError{}, err
	}
	return resp.Data, nil
}

func historyParams(from, to time.Time, ticket int64) url.Values {
	params := url.Values{}
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))
	if ticket != 0 {
		params.Set("ticket", strconv.FormatInt(ticket, 10))
	}
	return params
}
