package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mtbridge/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// tradeOutcome описывает, как конкретный маршрут отвечает на три исхода
// торговой команды: текст транспортного отказа, статус и формат делового
// отказа. Валидация всегда 400, транспорт всегда 500.
type tradeOutcome struct {
	transportMsg    string
	rejectionCode   int
	rejectionFormat string
}

// writeTradeError раскладывает ошибку движка в ответ маршрута.
// Возвращает false, если ошибка не распознана и нужен общий 500.
func (s *Server) writeTradeError(w http.ResponseWriter, err error, outcome tradeOutcome) bool {
	var validation *engine.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": validation.Msg})
		return true
	}

	var transport *engine.TransportFailure
	if errors.As(err, &transport) {
		payload := map[string]any{"error": outcome.transportMsg}
		if transport.Diag != nil {
			payload["last_error"] = transport.Diag
		}
		writeJSON(w, http.StatusInternalServerError, payload)
		return true
	}

	var rejection *engine.RejectionError
	if errors.As(err, &rejection) {
		writeJSON(w, outcome.rejectionCode, map[string]any{
			"error":  fmt.Sprintf(outcome.rejectionFormat, rejection.Result.Comment),
			"result": rejection.Result,
		})
		return true
	}

	return false
}

// writeInternal — общий ответ на неожиданную ошибку: подробности в лог,
// клиенту только факт.
func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithRequestID(w.Header().Get("X-Request-ID")).WithError(err).WithField("endpoint", r.URL.Path).Error("Необработанная ошибка запроса.")
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error"})
}

// writeTerminalDown — ответ на транспортный сбой при запросах чтения.
func (s *Server) writeTerminalDown(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithRequestID(w.Header().Get("X-Request-ID")).WithError(err).WithField("endpoint", r.URL.Path).Error("Терминал недоступен.")
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Terminal unavailable"})
}
