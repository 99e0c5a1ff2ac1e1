package mt5

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"mtbridge/internal/metrics"
	"mtbridge/internal/terminal"
)

type mtResponse[T any] struct {
	RetCode int    `json:"retcode"`
	RetMsg  string `json:"message"`
	Data    T      `json:"data"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body any, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveTerminalCall(path, time.Since(start).Seconds(), err)
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("Не удалось подготовить тело запроса: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	urlStr := c.baseURL + path
	if len(params) > 0 {
		urlStr += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, bodyReader)
	if err != nil {
		return &terminal.TransportError{Op: path, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("X-Terminal-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &terminal.TransportError{Op: path, Err: err}
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &terminal.TransportError{Op: path, Err: err}
	}

	if resp.StatusCode >= 400 {
		return &terminal.TransportError{Op: path, Err: fmt.Errorf("статус %s", resp.Status)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &terminal.TransportError{Op: path, Err: fmt.Errorf("Не удалось разобрать ответ: %w", err)}
	}

	if retCode, retMsg, ok := extractRetCode(out); ok && retCode != 0 {
		return &terminal.TransportError{Op: path, Err: fmt.Errorf("шлюз вернул отказ: %s (code=%d)", retMsg, retCode)}
	}

	return nil
}

func extractRetCode(v any) (int, string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return 0, "", false
	}

	retCodeField := rv.FieldByName("RetCode")
	retMsgField := rv.FieldByName("RetMsg")

	if retCodeField.IsValid() && retMsgField.IsValid() {
		return int(retCodeField.Int()), retMsgField.String(), true
	}

	return 0, "", false
}
