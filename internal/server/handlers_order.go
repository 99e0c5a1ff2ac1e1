package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mtbridge/internal/engine"
	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

type orderPayload struct {
	Symbol    string  `json:"symbol"`
	Volume    float64 `json:"volume"`
	Type      string  `json:"type"`
	Price     float64 `json:"price"`
	SL        float64 `json:"sl"`
	TP        float64 `json:"tp"`
	Deviation int     `json:"deviation"`
	Magic     int64   `json:"magic"`
	Comment   string  `json:"comment"`
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Request body tidak boleh kosong"})
		return
	}

	result, err := s.eng.SubmitOrder(r.Context(), engine.OrderRequest{
		Symbol:    payload.Symbol,
		Volume:    payload.Volume,
		Type:      payload.Type,
		Price:     payload.Price,
		SL:        payload.SL,
		TP:        payload.TP,
		Deviation: payload.Deviation,
		Magic:     payload.Magic,
		Comment:   payload.Comment,
	})
	if err != nil {
		if s.writeTradeError(w, err, tradeOutcome{
			transportMsg:    "Failed to send request. order_send() returned None.",
			rejectionCode:   http.StatusBadRequest,
			rejectionFormat: "Order failed: %s",
		}) {
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Order sent successfully", "result": result})
}

func (s *Server) handleOrderCancel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Ticket int64 `json:"ticket"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Ticket == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Nomor 'ticket' wajib diisi"})
		return
	}

	result, err := s.eng.CancelOrder(r.Context(), payload.Ticket)
	if err != nil {
		if s.writeTradeError(w, err, tradeOutcome{
			transportMsg:    "Failed to send cancel request. order_send() returned None.",
			rejectionCode:   http.StatusInternalServerError,
			rejectionFormat: "Gagal membatalkan order: %s",
		}) {
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Order #%d berhasil dibatalkan.", payload.Ticket),
		"result":  result,
	})
}

type positionStatusView struct {
	models.Position
	Status models.Status `json:"status"`
	State  models.Status `json:"state"`
}

type pendingStatusView struct {
	models.PendingOrder
	Status models.Status `json:"status"`
}

type historyOrderStatusView struct {
	models.HistoricalOrder
	Status models.Status `json:"status"`
}

type dealStatusView struct {
	models.HistoricalDeal
	// Тикет сделки подменяется запрошенным тикетом ордера.
	Ticket int64         `json:"ticket"`
	Status models.Status `json:"status"`
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	ticket, err := strconv.ParseInt(chi.URLParam(r, "ticket"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Ticket must be a valid integer"})
		return
	}
	s.resolveStatus(w, r, ticket)
}

func (s *Server) handleOrderStatusQuery(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ticket")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Ticket parameter is required"})
		return
	}

	ticket, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Ticket must be a valid integer"})
		return
	}
	s.resolveStatus(w, r, ticket)
}

func (s *Server) resolveStatus(w http.ResponseWriter, r *http.Request, ticket int64) {
	res, err := s.eng.ResolveStatus(r.Context(), ticket)
	if err != nil {
		if terminal.IsTransport(err) {
			s.writeTerminalDown(w, r, err)
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	switch {
	case res.Position != nil:
		writeJSON(w, http.StatusOK, positionStatusView{Position: *res.Position, Status: res.Status, State: res.State})
	case res.Pending != nil:
		writeJSON(w, http.StatusOK, pendingStatusView{PendingOrder: *res.Pending, Status: res.Status})
	case res.Order != nil:
		writeJSON(w, http.StatusOK, historyOrderStatusView{HistoricalOrder: *res.Order, Status: res.Status})
	case res.Deal != nil:
		writeJSON(w, http.StatusOK, dealStatusView{HistoricalDeal: *res.Deal, Ticket: res.Ticket, Status: res.Status})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":  fmt.Sprintf("Order with ticket #%d not found", ticket),
			"ticket": ticket,
			"status": models.StatusNotFound,
		})
	}
}
