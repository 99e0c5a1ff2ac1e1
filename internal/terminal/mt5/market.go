package mt5

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

func (c *Client) Ping(ctx context.Context) error {
	var resp mtResponse[struct {
		Connected bool `json:"connected"`
	}]

	if err := c.doRequest(ctx, http.MethodGet, "/ping", nil, nil, &resp); err != nil {
		return err
	}

	if !resp.Data.Connected {
		return &terminal.TransportError{Op: "/ping", Err: errNotConnected}
	}
	return nil
}

func (c *Client) Tick(ctx context.Context, symbol string) (models.Tick, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp mtResponse[*models.Tick]

	if err := c.doRequest(ctx, http.MethodGet, "/tick", params, nil, &resp); err != nil {
		return models.Tick{}, err
	}

	if resp.Data == nil {
		return models.Tick{}, terminal.ErrNoTick
	}
	return *resp.Data, nil
}

func (c *Client) RatesFromPos(ctx context.Context, symbol string, tf models.Timeframe, start, count int) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("timeframe", string(tf))
	params.Set("start", strconv.Itoa(start))
	params.Set("count", strconv.Itoa(count))

	var resp mtResponse[[]models.Bar]

	if err := c.doRequest(ctx, http.MethodGet, "/rates/pos", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) RatesRange(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("timeframe", string(tf))
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))

	var resp mtResponse[[]models.Bar]

	if err := c.doRequest(ctx, http.MethodGet, "/rates/range", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
