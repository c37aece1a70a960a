// server/internal/geo/geo_test.go
package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDistanceBasics(t *testing.T) {
	a := Point{Latitude: 10.5, Longitude: 76.2}
	b := Point{Latitude: 11.1, Longitude: 75.8}

	require.Equal(t, 0.0, Distance(a, a))
	require.Equal(t, Distance(a, b), Distance(b, a))
	require.Greater(t, Distance(a, b), 0.0)
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is pi*R/180 along a meridian.
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 1, Longitude: 0}
	require.InDelta(t, 111194.9, Distance(a, b), 10)
}

func TestRoundKm(t *testing.T) {
	require.Equal(t, 123.46, RoundKm(123456))
	require.Equal(t, 0.0, RoundKm(0))
	require.Equal(t, 1.0, RoundKm(1000))
}

func TestPointValid(t *testing.T) {
	require.True(t, Point{Latitude: 90, Longitude: -180}.Valid())
	require.False(t, Point{Latitude: 91, Longitude: 0}.Valid())
	require.False(t, Point{Latitude: 0, Longitude: 181}.Valid())
}

func TestNearestOrderingAndRadius(t *testing.T) {
	origin := Point{Latitude: 0, Longitude: 0}
	entries := []Entry{
		{ID: "far", Point: Point{Latitude: 2, Longitude: 0}},    // ~222 km
		{ID: "near", Point: Point{Latitude: 0.1, Longitude: 0}}, // ~11 km
		{ID: "mid", Point: Point{Latitude: 1, Longitude: 0}},    // ~111 km
	}

	matches := Nearest(origin, entries, 0)
	require.Len(t, matches, 3)
	require.Equal(t, "near", matches[0].ID)
	require.Equal(t, "mid", matches[1].ID)
	require.Equal(t, "far", matches[2].ID)

	matches = Nearest(origin, entries, 120000)
	require.Len(t, matches, 2)
	require.Equal(t, "near", matches[0].ID)
	require.Equal(t, "mid", matches[1].ID)
}

func TestNearestTiesKeepInsertionOrder(t *testing.T) {
	origin := Point{Latitude: 0, Longitude: 0}
	same := Point{Latitude: 0.5, Longitude: 0.5}
	entries := []Entry{
		{ID: "first", Point: same},
		{ID: "second", Point: same},
	}

	matches := Nearest(origin, entries, 0)
	require.Len(t, matches, 2)
	require.Equal(t, "first", matches[0].ID)
	require.Equal(t, "second", matches[1].ID)
}

func TestOperatingWindow(t *testing.T) {
	window := OperatingWindow{
		Days:        []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		OpenMinute:  9 * 60,
		CloseMinute: 17 * 60,
	}

	monday := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	require.True(t, window.OpenAt(monday.Add(10*time.Hour+30*time.Minute)))
	// Inside the day set but after closing.
	require.False(t, window.OpenAt(monday.Add(20*time.Hour)))
	// Right time of day, wrong day.
	sunday := monday.AddDate(0, 0, -1)
	require.False(t, window.OpenAt(sunday.Add(10*time.Hour)))
	// Boundaries are inclusive.
	require.True(t, window.OpenAt(monday.Add(9*time.Hour)))
	require.True(t, window.OpenAt(monday.Add(17*time.Hour)))
	require.False(t, window.OpenAt(monday.Add(17*time.Hour+time.Minute)))
}

func TestOperatingWindowDayCaseInsensitive(t *testing.T) {
	window := OperatingWindow{Days: []string{"monday"}, OpenMinute: 0, CloseMinute: 23*60 + 59}
	monday := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	require.True(t, window.OpenAt(monday))
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	require.Equal(t, 570, minutes)

	_, err = ParseClock("25:00")
	require.Error(t, err)
	_, err = ParseClock("abc")
	require.Error(t, err)
}
