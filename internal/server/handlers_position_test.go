package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

func TestHandleCloseByTicketSuccess(t *testing.T) {
	term := &fakeTerminal{
		positionsFn: func(_ context.Context, filter terminal.PositionFilter) ([]models.Position, error) {
			return []models.Position{{
				Ticket: filter.Ticket,
				Type:   models.PositionTypeBuy,
				Symbol: "EURUSD",
				Volume: 0.1,
			}}, nil
		},
		tickFn: func(context.Context, string) (models.Tick, error) {
			return models.Tick{Bid: 1.0950, Ask: 1.0952}, nil
		},
	}
	handler := newTestServer(term)

	rec := doRequest(t, handler, http.MethodPost, "/position/close_by_ticket", map[string]any{"ticket": 5001}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Posisi #5001 berhasil ditutup.", body["message"])
	assert.NotNil(t, body["result"])

	require.Len(t, term.sentRequests, 1)
	sent := term.sentRequests[0]
	assert.Equal(t, models.OrderTypeSell, sent.Type)
	assert.Equal(t, 1.0952, sent.Price)
	assert.Equal(t, int64(5001), sent.Position)
}

func TestHandleCloseByTicketNotFound(t *testing.T) {
	handler := newTestServer(&fakeTerminal{})

	rec := doRequest(t, handler, http.MethodPost, "/position/close_by_ticket", map[string]any{"ticket": 12345}, true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Posisi dengan tiket 12345 tidak ditemukan.", decodeBody(t, rec)["error"])
}

func TestHandleCloseByTicketMissingTicket(t *testing.T) {
	handler := newTestServer(&fakeTerminal{})

	rec := doRequest(t, handler, http.MethodPost, "/position/close_by_ticket", map[string]any{}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Nomor 'ticket' wajib diisi", decodeBody(t, rec)["error"])
}

func TestHandleCloseByTicketNoTick(t *testing.T) {
	term := &fakeTerminal{
		positionsFn: func(_ context.Context, filter terminal.PositionFilter) ([]models.Position, error) {
			return []models.Position{{Ticket: filter.Ticket, Symbol: "EURUSD", Volume: 0.1}}, nil
		},
	}
	handler := newTestServer(term)

	rec := doRequest(t, handler, http.MethodPost, "/position/close_by_ticket", map[string]any{"ticket": 5001}, true)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Gagal mendapatkan harga tick", decodeBody(t, rec)["error"])
}

func TestHandleClosePositionRequiresPayload(t *testing.T) {
	handler := newTestServer(&fakeTerminal{})

	rec := doRequest(t, handler, http.MethodPost, "/close_position", map[string]any{}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Position data is required", decodeBody(t, rec)["error"])
}

func TestHandleClosePositionSuccess(t *testing.T) {
	term := &fakeTerminal{
		tickFn: func(context.Context, string) (models.Tick, error) {
			return models.Tick{Bid: 2300.10, Ask: 2300.40}, nil
		},
	}
	handler := newTestServer(term)

	rec := doRequest(t, handler, http.MethodPost, "/close_position", map[string]any{
		"position": map[string]any{
			"ticket": 8,
			"type":   1,
			"symbol": "XAUUSD",
			"volume": 0.5,
		},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Position closed successfully", decodeBody(t, rec)["message"])

	require.Len(t, term.sentRequests, 1)
	sent := term.sentRequests[0]
	// Продажа гасится покупкой по bid.
	assert.Equal(t, models.OrderTypeBuy, sent.Type)
	assert.Equal(t, 2300.10, sent.Price)
}

func TestHandleCloseAllPositions(t *testing.T) {
	term := &fakeTerminal{
		positionsFn: func(context.Context, terminal.PositionFilter) ([]models.Position, error) {
			return []models.Position{
				{Ticket: 1, Type: models.PositionTypeBuy, Symbol: "EURUSD", Volume: 0.1},
				{Ticket: 2, Type: models.PositionTypeSell, Symbol: "EURUSD", Volume: 0.2},
			}, nil
		},
		tickFn: func(context.Context, string) (models.Tick, error) {
			return models.Tick{Bid: 1.1, Ask: 1.2}, nil
		},
	}
	handler := newTestServer(term)

	rec := doRequest(t, handler, http.MethodPost, "/close_all_positions", map[string]any{"order_type": "BUY"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Closed 1 positions", body["message"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, float64(1), first["ticket"])
	assert.Equal(t, true, first["success"])
}

func TestHandleCloseAllPositionsNothingToClose(t *testing.T) {
	handler := newTestServer(&fakeTerminal{})

	// Тело запроса необязательно.
	rec := doRequest(t, handler, http.MethodPost, "/close_all_positions", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No positions were closed", decodeBody(t, rec)["message"])
}

func TestHandleModifySLTP(t *testing.T) {
	term := &fakeTerminal{
		positionsFn: func(_ context.Context, filter terminal.PositionFilter) ([]models.Position, error) {
			return []models.Position{{Ticket: filter.Ticket, Symbol: "GBPUSD"}}, nil
		},
	}
	handler := newTestServer(term)

	rec := doRequest(t, handler, http.MethodPost, "/modify_sl_tp", map[string]any{
		"position": 5001,
		"sl":       1.2500,
		"tp":       1.2700,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SL/TP untuk posisi #5001 berhasil dimodifikasi.", decodeBody(t, rec)["message"])
}

func TestHandleModifySLTPValidation(t *testing.T) {
	handler := newTestServer(&fakeTerminal{})

	rec := doRequest(t, handler, http.MethodPost, "/modify_sl_tp", map[string]any{"sl": 1.1}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Nomor tiket 'position' wajib diisi", decodeBody(t, rec)["error"])

	rec = doRequest(t, handler, http.MethodPost, "/modify_sl_tp", map[string]any{"position": 5001}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Anda harus menyediakan nilai 'sl' atau 'tp'", decodeBody(t, rec)["error"])
}

func TestHandleModifySLTPNotFound(t *testing.T) {
	handler := newTestServer(&fakeTerminal{})

	rec := doRequest(t, handler, http.MethodPost, "/modify_sl_tp", map[string]any{"position": 404, "sl": 1.0}, true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Posisi dengan tiket 404 tidak ditemukan.", decodeBody(t, rec)["error"])
}

func TestHandleGetPositions(t *testing.T) {
	term := &fakeTerminal{
		positionsFn: func(_ context.Context, filter terminal.PositionFilter) ([]models.Position, error) {
			if filter.Magic == 555 {
				return []models.Position{{Ticket: 1, Symbol: "EURUSD", Magic: 555}}, nil
			}
			return nil, nil
		},
	}
	handler := newTestServer(term)

	// Пустая выборка заворачивается в объект.
	rec := doRequest(t, handler, http.MethodGet, "/get_positions", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"positions": []}`, rec.Body.String())

	// Непустая отдаётся голым массивом.
	rec = doRequest(t, handler, http.MethodGet, "/get_positions?magic=555", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var positions []models.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &positions))
	require.Len(t, positions, 1)
	assert.Equal(t, int64(555), positions[0].Magic)

	rec = doRequest(t, handler, http.MethodGet, "/get_positions?magic=oops", nil, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid 'magic' parameter. Must be an integer.", decodeBody(t, rec)["error"])
}

func TestHandlePositionsTotal(t *testing.T) {
	term := &fakeTerminal{
		positionsTotalFn: func(context.Context) (int, error) {
			return 3, nil
		},
	}
	handler := newTestServer(term)

	rec := doRequest(t, handler, http.MethodGet, "/positions_total", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total": 3}`, rec.Body.String())
}
