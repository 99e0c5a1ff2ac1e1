package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"mtbridge/internal/terminal"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Мост слушает локально, происхождение не проверяем.
		return true
	},
}

// handleTickStream толкает клиенту свежие котировки символа с настроенным
// интервалом, пока клиент не отключится или терминал не пропадёт.
func (s *Server) handleTickStream(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Symbol parameter is required"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("Не удалось поднять WS соединение.")
		return
	}
	defer conn.Close()

	s.log.WithSymbol(symbol).Info("WS подписка на тики открыта.")

	// Читатель нужен только чтобы заметить закрытие со стороны клиента.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := s.cfg.Server.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			s.log.WithSymbol(symbol).Info("WS подписка закрыта клиентом.")
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			tick, err := s.term.Tick(r.Context(), symbol)
			if err != nil {
				if terminal.IsTransport(err) {
					s.log.WithSymbol(symbol).WithError(err).Error("Терминал пропал, закрываем WS.")
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "terminal unavailable"),
						time.Now().Add(time.Second))
					return
				}
				// Нет котировки — пропускаем такт.
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(tick); err != nil {
				s.log.WithSymbol(symbol).WithError(err).Warn("Не удалось отправить тик, закрываем WS.")
				return
			}
		}
	}
}
