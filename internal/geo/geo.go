// server/internal/geo/geo.go
package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// EarthRadiusMeters is the mean earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Valid reports whether the point lies inside the valid coordinate ranges.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundKm converts a distance in meters to kilometers rounded to two
// decimals. Only for display; filtering and sorting use full precision.
func RoundKm(meters float64) float64 {
	return math.Round(meters/10) / 100
}

// Entry is one candidate in a proximity query.
type Entry struct {
	ID    string
	Point Point
}

// Match is a query result annotated with its computed distance.
type Match struct {
	ID             string
	DistanceMeters float64
}

// Nearest returns the entries within radiusMeters of origin, ordered
// ascending by distance. A radius <= 0 means rank-only, no distance filter.
// The sort is stable, so distance ties keep insertion order.
func Nearest(origin Point, entries []Entry, radiusMeters float64) []Match {
	matches := make([]Match, 0, len(entries))
	for _, e := range entries {
		d := Distance(origin, e.Point)
		if radiusMeters > 0 && d > radiusMeters {
			continue
		}
		matches = append(matches, Match{ID: e.ID, DistanceMeters: d})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceMeters < matches[j].DistanceMeters
	})
	return matches
}

// OperatingWindow describes when an NGO is open: a set of weekdays plus a
// daily [open, close] window in minutes since midnight.
type OperatingWindow struct {
	Days        []string `bson:"days" json:"days"`
	OpenMinute  int      `bson:"openMinute" json:"openMinute"`
	CloseMinute int      `bson:"closeMinute" json:"closeMinute"`
}

// OpenAt reports whether the window covers the given local instant: the
// weekday must be in Days and the time of day inside [OpenMinute, CloseMinute].
func (w OperatingWindow) OpenAt(t time.Time) bool {
	day := t.Weekday().String()
	found := false
	for _, d := range w.Days {
		if strings.EqualFold(d, day) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= w.OpenMinute && minute <= w.CloseMinute
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}
