package format

import (
	"fmt"
	"strings"
	"time"
)

// Currency formats an amount in minor units for the currencies the shop
// handles. Example: Currency(4500, "TRY") => "₺45.00".
func Currency(minor int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	neg := minor < 0
	if neg {
		minor = -minor
	}
	head := thousandSep(minor / 100)
	tail := fmt.Sprintf("%02d", minor%100)

	var out string
	switch currency {
	case "TRY", "":
		out = "₺" + head + "." + tail
	case "USD":
		out = "$" + head + "." + tail
	default:
		out = currency + " " + head + "." + tail
	}
	if neg {
		return "-" + out
	}
	return out
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	out := ""
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out += ","
		}
		out += string(c)
	}
	return out
}

// Date formats a timestamp in the short form used by order listings.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
