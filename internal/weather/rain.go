package weather

import (
	"fmt"
	"strconv"
	"strings"
)

// RainOutlook summarizes the minutely intervals of a rain snapshot.
type RainOutlook struct {
	Intervals int
	Wet       int
	TotalMM   float64
	FirstWet  string // fxTime of the first interval with precipitation
}

// HasRain reports whether any interval carries precipitation.
func (o RainOutlook) HasRain() bool {
	return o.Wet > 0
}

// SummarizeRain walks every interval and parses its precipitation amount.
// A value that does not parse as a number is an error; an empty value
// counts as zero.
func SummarizeRain(rain *MinutelyRain) (RainOutlook, error) {
	var o RainOutlook
	if rain == nil {
		return o, nil
	}

	for _, m := range rain.Minutely {
		o.Intervals++

		raw := strings.TrimSpace(m.Precip)
		if raw == "" {
			continue
		}
		mm, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return o, fmt.Errorf("invalid precipitation %q at %s: %w", m.Precip, m.FxTime, err)
		}
		if mm > 0 {
			if o.Wet == 0 {
				o.FirstWet = m.FxTime
			}
			o.Wet++
			o.TotalMM += mm
		}
	}
	return o, nil
}
