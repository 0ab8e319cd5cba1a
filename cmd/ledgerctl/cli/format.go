package cli

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

var printer = message.NewPrinter(language.English)

// amount renders a currency value with grouped thousands, e.g. 1,250.00.
func amount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// parseDay reads a YYYY-MM-DD flag. Empty returns fallback.
func parseDay(name, value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected %s", name, dateLayout)
	}
	return t, nil
}

func endOfDay(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
}

func startOfDay(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour)
}
