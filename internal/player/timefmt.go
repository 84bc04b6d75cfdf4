package player

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxFormattableSeconds keeps the int conversion in FormatTime well defined
const maxFormattableSeconds = 1e15

// FormatTime renders seconds as M:SS. Minutes are not wrapped into hours.
// NaN, infinite, negative and absurdly large values render as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 || seconds > maxFormattableSeconds {
		return "0:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatTimeValue is FormatTime for loosely typed input such as decoded JSON.
// Anything that is not a number renders as 0:00.
func FormatTimeValue(v any) string {
	switch t := v.(type) {
	case float64:
		return FormatTime(t)
	case float32:
		return FormatTime(float64(t))
	case int:
		return FormatTime(float64(t))
	case int32:
		return FormatTime(float64(t))
	case int64:
		return FormatTime(float64(t))
	case uint:
		return FormatTime(float64(t))
	case uint32:
		return FormatTime(float64(t))
	case uint64:
		return FormatTime(float64(t))
	case time.Duration:
		return FormatTime(t.Seconds())
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return FormatTime(math.NaN())
		}
		return FormatTime(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return FormatTime(math.NaN())
		}
		return FormatTime(f)
	default:
		return FormatTime(math.NaN())
	}
}
