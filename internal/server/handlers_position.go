package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"mtbridge/internal/engine"
	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

func (s *Server) handleClosePosition(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Position *struct {
			Type   models.PositionType `json:"type"`
			Ticket int64               `json:"ticket"`
			Symbol string              `json:"symbol"`
			Volume float64             `json:"volume"`
		} `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Position == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Position data is required"})
		return
	}

	result, err := s.eng.ClosePosition(r.Context(), engine.CloseSpec{
		Ticket: payload.Position.Ticket,
		Type:   payload.Position.Type,
		Symbol: payload.Position.Symbol,
		Volume: payload.Position.Volume,
	})
	if err != nil {
		if errors.Is(err, engine.ErrTickUnavailable) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Gagal mendapatkan harga tick"})
			return
		}
		if s.writeTradeError(w, err, tradeOutcome{
			transportMsg:    "Failed to send close request to terminal. order_send() returned None.",
			rejectionCode:   http.StatusBadRequest,
			rejectionFormat: "Failed to close position: %s",
		}) {
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Position closed successfully", "result": result})
}

func (s *Server) handleCloseAllPositions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		OrderType string `json:"order_type"`
		Magic     int64  `json:"magic"`
	}
	// Тело необязательно: без него закрывается всё.
	_ = json.NewDecoder(r.Body).Decode(&payload)
	if payload.OrderType == "" {
		payload.OrderType = "all"
	}

	outcomes, err := s.eng.CloseAllPositions(r.Context(), engine.CloseFilter{
		Side:  payload.OrderType,
		Magic: payload.Magic,
	})
	if err != nil {
		if terminal.IsTransport(err) {
			s.writeTerminalDown(w, r, err)
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	if len(outcomes) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"message": "No positions were closed"})
		return
	}

	closed := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			closed++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Closed %d positions", closed),
		"results": outcomes,
	})
}

func (s *Server) handleCloseByTicket(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Ticket int64 `json:"ticket"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Ticket == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Nomor 'ticket' wajib diisi"})
		return
	}

	result, err := s.eng.ClosePositionByTicket(r.Context(), payload.Ticket)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrPositionNotFound):
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": fmt.Sprintf("Posisi dengan tiket %d tidak ditemukan.", payload.Ticket),
			})
			return
		case errors.Is(err, engine.ErrTickUnavailable):
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Gagal mendapatkan harga tick"})
			return
		}
		if s.writeTradeError(w, err, tradeOutcome{
			transportMsg:    "Failed to send close request to terminal. order_send() returned None.",
			rejectionCode:   http.StatusInternalServerError,
			rejectionFormat: "Gagal menutup posisi: %s",
		}) {
			return
		}
		if terminal.IsTransport(err) {
			s.writeTerminalDown(w, r, err)
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Posisi #%d berhasil ditutup.", payload.Ticket),
		"result":  result,
	})
}

func (s *Server) handleModifySLTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Position int64   `json:"position"`
		SL       float64 `json:"sl"`
		TP       float64 `json:"tp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Position == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Nomor tiket 'position' wajib diisi"})
		return
	}

	result, err := s.eng.ModifySLTP(r.Context(), payload.Position, payload.SL, payload.TP)
	if err != nil {
		if errors.Is(err, engine.ErrPositionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": fmt.Sprintf("Posisi dengan tiket %d tidak ditemukan.", payload.Position),
			})
			return
		}
		if s.writeTradeError(w, err, tradeOutcome{
			transportMsg:    "Failed to send SL/TP request to terminal. order_send() returned None.",
			rejectionCode:   http.StatusInternalServerError,
			rejectionFormat: "Gagal memodifikasi SL/TP: %s",
		}) {
			return
		}
		if terminal.IsTransport(err) {
			s.writeTerminalDown(w, r, err)
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("SL/TP untuk posisi #%d berhasil dimodifikasi.", payload.Position),
		"result":  result,
	})
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	var magic int64
	if raw := r.URL.Query().Get("magic"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid 'magic' parameter. Must be an integer."})
			return
		}
		magic = parsed
	}

	positions, err := s.eng.Positions(r.Context(), magic)
	if err != nil {
		s.log.WithRequestID(w.Header().Get("X-Request-ID")).WithError(err).Error("Не удалось получить список позиций.")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to retrieve positions"})
		return
	}

	if len(positions) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"positions": []models.Position{}})
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handlePositionsTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.eng.PositionsTotal(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Failed to get positions total"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}
