// internal/timefmt/relative.go
package timefmt

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Relative renders t relative to now, e.g. "Updated 3 hours ago".
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return "Recently updated"
	}
	return "Updated " + humanize.RelTime(t, now, "ago", "from now")
}
