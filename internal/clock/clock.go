package clock

import (
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
)

// DefaultLocation is the publisher's timezone. Indicators are dated in Colombian time.
const DefaultLocation = "America/Bogota"

// Clock reports the current calendar date used for freshness checks.
type Clock interface {
	Today() timeutil.Date
}

type SystemClock struct {
	clock    clockwork.Clock
	location *time.Location
}

// NewSystemClock returns a Clock reading the wall time of c in loc.
// A nil c uses the real clock and a nil loc uses time.Local.
func NewSystemClock(c clockwork.Clock, loc *time.Location) *SystemClock {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{
		clock:    c,
		location: loc,
	}
}

func (s *SystemClock) Today() timeutil.Date {
	return timeutil.DateOf(s.clock.Now().In(s.location))
}

func (s *SystemClock) Location() *time.Location {
	return s.location
}

// LoadLocation resolves an IANA timezone name, falling back to DefaultLocation when name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultLocation
	}
	return time.LoadLocation(name)
}

// Fixed always reports the same date.
type Fixed timeutil.Date

func (f Fixed) Today() timeutil.Date {
	return timeutil.Date(f)
}
