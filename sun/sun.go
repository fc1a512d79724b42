// Package sun computes astronomical sunrise and sunset for a location.
package sun

import (
	"time"

	"github.com/sixdouglas/suncalc"
)

// Times holds the sunrise and sunset of one day
type Times struct {
	Sunrise time.Time
	Sunset  time.Time
}

// TimesAt returns the sun times for the day containing date, in date's location
func TimesAt(date time.Time, lat, lon float64) Times {
	times := suncalc.GetTimes(date, lat, lon)
	return Times{
		Sunrise: times["sunrise"].Value.In(date.Location()),
		Sunset:  times["sunset"].Value.In(date.Location()),
	}
}

// DayLength is the time between sunrise and sunset
func (t Times) DayLength() time.Duration {
	return t.Sunset.Sub(t.Sunrise)
}

// IsDaylight reports whether at falls between sunrise and sunset
func (t Times) IsDaylight(at time.Time) bool {
	return !at.Before(t.Sunrise) && !at.After(t.Sunset)
}
