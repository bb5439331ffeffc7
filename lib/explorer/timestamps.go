package explorer

import (
	"fmt"
	"time"
)

const (
	// FORMAT is the time format grafana expects in json responses.
	FORMAT = "2006-01-02T15:04:05.000Z"
	// STAMP is the compact timestamp embedded in artifact filenames.
	STAMP = "20060102150405"
)

// ParseStamp turns a filename timestamp into a UTC time.
func ParseStamp(stamp string) (time.Time, error) {
	t, err := time.Parse(STAMP, stamp)
	if err != nil {
		return time.Now(), fmt.Errorf("bad artifact timestamp %s: %v", stamp, err)
	}
	return t.UTC(), nil
}
