package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mtbridge/internal/config"
	"mtbridge/internal/engine"
	"mtbridge/internal/logger"
	"mtbridge/internal/terminal"
)

// Server связывает движок и терминал с HTTP-маршрутами. Пути и тексты
// ответов повторяют контракт исходного API моста один в один.
type Server struct {
	cfg  *config.Config
	eng  *engine.Engine
	term terminal.Client
	log  *logger.Logger

	jakarta *time.Location
}

func New(cfg *config.Config, eng *engine.Engine, term terminal.Client, log *logger.Logger) *Server {
	// Исходный API отдаёт OHLCV во времени Джакарты.
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		loc = time.UTC
	}

	return &Server{
		cfg:     cfg,
		eng:     eng,
		term:    term,
		log:     log,
		jakarta: loc,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.withRequestID)
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)
	r.Use(s.observeRequests)

	// Рыночные данные открыты, как и в исходном API.
	r.Get("/fetch_data_pos", s.handleFetchDataPos)
	r.Get("/fetch_data_range", s.handleFetchDataRange)
	r.Get("/ohlcv", s.handleOHLCV)
	r.Get("/data/tick/{symbol}", s.handleTick)
	r.Get("/ws/ticks", s.handleTickStream)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)

		r.Post("/order", s.handleOrder)
		r.Post("/order/cancel", s.handleOrderCancel)
		r.Get("/order/status/{ticket}", s.handleOrderStatus)
		r.Get("/order/status", s.handleOrderStatusQuery)

		r.Post("/close_position", s.handleClosePosition)
		r.Post("/close_all_positions", s.handleCloseAllPositions)
		r.Post("/position/close_by_ticket", s.handleCloseByTicket)
		r.Post("/modify_sl_tp", s.handleModifySLTP)
		r.Get("/get_positions", s.handleGetPositions)
		r.Get("/positions_total", s.handlePositionsTotal)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.term.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
