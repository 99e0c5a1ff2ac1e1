package mt5

import (
	"net/http"
	"time"

	"mtbridge/internal/logger"
)

// Client ходит в HTTP-шлюз терминала (слушатель на стороне эксперта MT5).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

func New(baseURL, token string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}
