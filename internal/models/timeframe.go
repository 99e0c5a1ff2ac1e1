package models

import (
	"fmt"
	"strings"
)

type Timeframe string

var validTimeframes = map[Timeframe]bool{
	"M1": true, "M2": true, "M3": true, "M4": true, "M5": true,
	"M6": true, "M10": true, "M12": true, "M15": true, "M20": true,
	"M30": true, "H1": true, "H2": true, "H3": true, "H4": true,
	"H6": true, "H8": true, "H12": true, "D1": true, "W1": true,
	"MN1": true,
}

// ParseTimeframe нормализует строку таймфрейма ("m5" -> "M5") и проверяет,
// что терминал такой таймфрейм знает.
func ParseTimeframe(raw string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(raw)))
	if !validTimeframes[tf] {
		return "", fmt.Errorf("Invalid timeframe: %s", raw)
	}
	return tf, nil
}
