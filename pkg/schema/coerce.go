package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsight-io/chainsight/pkg/models"
)

// dateLayouts are the calendar-date formats accepted across sources, most
// specific first. Superstore exports use day-first and month-first slash
// forms; this system's own exports use ISO dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
}

// cellString renders a raw cell as a trimmed string. Adapters emit strings
// for file data and typed values for synthetic data.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// coerceDate parses a date-like cell. The zero time marks a missing or
// unparsable date; callers flag the anomaly, never substitute a default.
func coerceDate(v interface{}) time.Time {
	s := cellString(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// coerceFloat parses a numeric cell. Unparsable values become the missing
// sentinel rather than a silent zero so aggregation can exclude them.
func coerceFloat(v interface{}) models.Float {
	switch t := v.(type) {
	case float64:
		return models.FloatOf(t)
	case float32:
		return models.FloatOf(float64(t))
	case int:
		return models.FloatOf(float64(t))
	case int64:
		return models.FloatOf(float64(t))
	}

	s := cellString(v)
	if s == "" {
		return models.MissingFloat()
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.MissingFloat()
	}
	return models.FloatOf(f)
}

// coerceMoney parses a money cell into an exact decimal. Unparsable values
// become null decimals.
func coerceMoney(v interface{}) decimal.NullDecimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(t))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(t)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(t))
	case decimal.Decimal:
		return decimal.NewNullDecimal(t)
	}

	s := cellString(v)
	if s == "" {
		return decimal.NullDecimal{}
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// coerceBool parses common boolean spellings. Anything unrecognized is
// false.
func coerceBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	}

	switch strings.ToLower(cellString(v)) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}
