package format

import (
	"fmt"
	"time"
)

const (
	dateTimeLayout = "2006-01-02T15:04:05"
	offsetLayout   = "-07:00"
)

// Timestamp renders a capture time as YYYY-MM-DDTHH:MM:SS.mmm±HH:MM in loc.
// A nil loc means time.Local. Milliseconds are micros/1000, truncated.
func Timestamp(seconds, micros int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t := time.Unix(seconds, 0).In(loc)
	return fmt.Sprintf("%s.%03d%s", t.Format(dateTimeLayout), micros/1000, t.Format(offsetLayout))
}
