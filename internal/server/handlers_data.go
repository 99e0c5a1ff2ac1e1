package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mtbridge/internal/models"
	"mtbridge/internal/terminal"
)

type barView struct {
	Time       string  `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
	Spread     int     `json:"spread"`
	RealVolume int64   `json:"real_volume"`
}

func barViews(bars []models.Bar, loc *time.Location, layout string) []barView {
	views := make([]barView, 0, len(bars))
	for _, bar := range bars {
		views = append(views, barView{
			Time:       time.Unix(bar.Time, 0).In(loc).Format(layout),
			Open:       bar.Open,
			High:       bar.High,
			Low:        bar.Low,
			Close:      bar.Close,
			TickVolume: bar.TickVolume,
			Spread:     bar.Spread,
			RealVolume: bar.RealVolume,
		})
	}
	return views
}

func (s *Server) handleFetchDataPos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	symbol := query.Get("symbol")
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Symbol parameter is required"})
		return
	}

	tfRaw := query.Get("timeframe")
	if tfRaw == "" {
		tfRaw = "M1"
	}
	tf, err := models.ParseTimeframe(tfRaw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	numBars := 100
	if raw := query.Get("num_bars"); raw != "" {
		numBars, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid 'num_bars' parameter. Must be an integer."})
			return
		}
	}

	bars, err := s.term.RatesFromPos(r.Context(), symbol, tf, 0, numBars)
	if err != nil {
		s.writeTerminalDown(w, r, err)
		return
	}
	if len(bars) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Failed to get rates data"})
		return
	}

	writeJSON(w, http.StatusOK, barViews(bars, time.UTC, time.RFC3339))
}

func (s *Server) handleFetchDataRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	symbol := query.Get("symbol")
	startRaw := query.Get("start")
	endRaw := query.Get("end")
	if symbol == "" || startRaw == "" || endRaw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Symbol, start, and end parameters are required"})
		return
	}

	tfRaw := query.Get("timeframe")
	if tfRaw == "" {
		tfRaw = "M1"
	}
	tf, err := models.ParseTimeframe(tfRaw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	start, err := parseISOTime(startRaw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("Invalid 'start' datetime: %s", startRaw)})
		return
	}
	end, err := parseISOTime(endRaw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("Invalid 'end' datetime: %s", endRaw)})
		return
	}

	bars, err := s.term.RatesRange(r.Context(), symbol, tf, start, end)
	if err != nil {
		s.writeTerminalDown(w, r, err)
		return
	}
	if len(bars) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Failed to get rates data"})
		return
	}

	writeJSON(w, http.StatusOK, barViews(bars, time.UTC, time.RFC3339))
}

func (s *Server) handleOHLCV(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	symbol := query.Get("symbol")
	tfRaw := query.Get("timeframe")
	if symbol == "" || tfRaw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Parameters 'symbol' and 'timeframe' are required"})
		return
	}

	tf, err := models.ParseTimeframe(tfRaw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	count := 100
	if raw := query.Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid 'count' parameter. Must be an integer."})
			return
		}
	}

	bars, err := s.term.RatesFromPos(r.Context(), symbol, tf, 0, count)
	if err != nil {
		s.writeTerminalDown(w, r, err)
		return
	}
	if len(bars) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("Failed to get OHLCV data for %s", symbol)})
		return
	}

	writeJSON(w, http.StatusOK, barViews(bars, s.jakarta, "2006-01-02 15:04:05 MST"))
}

type tickView struct {
	models.Tick
	TimeISO string `json:"time_iso"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	tick, err := s.term.Tick(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, terminal.ErrNoTick) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": fmt.Sprintf("Tidak bisa menemukan data tick untuk simbol '%s'", symbol),
			})
			return
		}
		s.writeTerminalDown(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tickView{
		Tick:    tick,
		TimeISO: time.Unix(tick.Time, 0).Format("2006-01-02T15:04:05"),
	})
}

func parseISOTime(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("нераспознанный формат даты: %s", raw)
}
