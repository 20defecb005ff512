// Package util holds small helpers shared across the command handlers.
package util

import (
	"strings"
	"time"
)

// tplLayout translates placeholder templates ("YYYY-MM-DD hh:mm") into Go
// reference-time layouts. Longer placeholders come first so YYYY is not
// consumed as two YY.
var tplLayout = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDateTpl renders a millisecond Unix timestamp through a placeholder
// template. A zero timestamp renders as the empty string, so absent dates
// need no special casing at call sites.
func FormatDateTpl(ms int64, tpl string) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).Format(tplLayout.Replace(tpl))
}
