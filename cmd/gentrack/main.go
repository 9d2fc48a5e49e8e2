// Command gentrack writes a replay track fixture for the replay binding. It
// either walks a curving path from a start point or follows the waypoints in
// a CSV file, spacing fixes by speed and interval.
//
// Usage:
//
//	go run ./cmd/gentrack -out data/track.json -points 24
//	go run ./cmd/gentrack -csv waypoints.csv -speed 12 -interval 2s -out data/drive.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/adapter/replay"
	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/jonboulle/clockwork"
)

const earthRadiusM = 6371000.0

type point struct{ lat, lon float64 }

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "optional CSV of lat,lon waypoints (with header) to follow")
	out := flag.String("out", "data/track.json", "output path for the track fixture")
	lat := flag.Float64("lat", 30.2672, "start latitude for a generated walk")
	lon := flag.Float64("lon", -97.7431, "start longitude for a generated walk")
	bearing := flag.Float64("bearing", 35, "initial bearing in degrees for a generated walk")
	turn := flag.Float64("turn", 3, "bearing change per fix in degrees for a generated walk")
	points := flag.Int("points", 24, "number of fixes for a generated walk")
	speed := flag.Float64("speed", 1.4, "travel speed in m/s")
	interval := flag.Duration("interval", 5*time.Second, "time between fixes")
	start := flag.String("start", "2024-04-26T15:10:00Z", "RFC3339 timestamp of the first fix")
	flag.Parse()

	startTime, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if *speed <= 0 || *interval <= 0 {
		return fmt.Errorf("-speed and -interval must be positive")
	}
	step := *speed * interval.Seconds()

	var path []point
	if *csvPath != "" {
		waypoints, err := readWaypoints(*csvPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *csvPath, err)
		}
		path = follow(waypoints, step)
	} else {
		path = walk(point{*lat, *lon}, *bearing, *turn, step, *points)
	}

	// A fake clock keeps fixture timestamps reproducible.
	clock := clockwork.NewFakeClockAt(startTime.UTC())
	track := buildTrack(path, *speed, *interval, clock)

	if err := replay.ValidateTrack(track); err != nil {
		return fmt.Errorf("generated track is invalid: %w", err)
	}
	if err := writeJSON(*out, track); err != nil {
		return fmt.Errorf("writing track: %w", err)
	}
	log.Printf("wrote track fixture: %s", *out)

	printStats(track, path)
	return nil
}

func readWaypoints(path string) ([]point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 3 {
		return nil, fmt.Errorf("need a header and at least two waypoints")
	}

	waypoints := make([]point, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: want lat,lon", i+2)
		}
		lat, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: lat: %w", i+2, err)
		}
		lon, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: lon: %w", i+2, err)
		}
		waypoints = append(waypoints, point{lat, lon})
	}
	return waypoints, nil
}

// walk heads out from start, turning a little at every fix.
func walk(start point, bearing, turn, step float64, n int) []point {
	path := make([]point, 0, n)
	cur := start
	for range n {
		cur = destination(cur, bearing, step)
		path = append(path, cur)
		bearing = math.Mod(bearing+turn+360, 360)
	}
	return path
}

// follow samples the polyline through waypoints every step meters.
func follow(waypoints []point, step float64) []point {
	path := []point{waypoints[0]}
	for i := 1; i < len(waypoints); i++ {
		from, to := waypoints[i-1], waypoints[i]
		legs := int(math.Ceil(distance(from, to) / step))
		for j := 1; j <= legs; j++ {
			f := float64(j) / float64(legs)
			path = append(path, point{
				lat: from.lat + (to.lat-from.lat)*f,
				lon: from.lon + (to.lon-from.lon)*f,
			})
		}
	}
	return path
}

func buildTrack(path []point, speed float64, interval time.Duration, clock *clockwork.FakeClock) []domain.Location {
	track := make([]domain.Location, 0, len(path))
	for i, p := range path {
		provider := domain.ProviderGPS
		if i%4 == 0 {
			provider = domain.ProviderFused
		}
		heading := 0.0
		if i+1 < len(path) {
			heading = initialBearing(p, path[i+1])
		} else if i > 0 {
			heading = initialBearing(path[i-1], p)
		}
		track = append(track, domain.Location{
			ID:        int64(i + 1),
			Provider:  provider,
			Time:      clock.Now().UnixMilli(),
			Latitude:  round(p.lat, 6),
			Longitude: round(p.lon, 6),
			Accuracy:  round(4+float64(i%5)*0.7, 1),
			Speed:     speed,
			Altitude:  round(149+float64(i)*0.2, 1),
			Bearing:   roundBearing(heading),
		})
		clock.Advance(interval)
	}
	return track
}

func destination(from point, bearing, dist float64) point {
	lat1 := radians(from.lat)
	lon1 := radians(from.lon)
	brg := radians(bearing)
	d := dist / earthRadiusM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))
	return point{degrees(lat2), degrees(lon2)}
}

func distance(a, b point) float64 {
	dLat := radians(b.lat - a.lat)
	dLon := radians(b.lon - a.lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.lat))*math.Cos(radians(b.lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

func initialBearing(a, b point) float64 {
	lat1, lat2 := radians(a.lat), radians(b.lat)
	dLon := radians(b.lon - a.lon)
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(degrees(math.Atan2(y, x))+360, 360)
}

// roundBearing rounds to one decimal, wrapping 360 back to 0.
func roundBearing(deg float64) float64 {
	r := round(deg, 1)
	if r >= 360 {
		return 0
	}
	return r
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(track []domain.Location, path []point) {
	var meters float64
	for i := 1; i < len(path); i++ {
		meters += distance(path[i-1], path[i])
	}
	first, last := track[0].FixTime(), track[len(track)-1].FixTime()

	fmt.Println("\n=== Track stats ===")
	fmt.Printf("Fixes: %d\n", len(track))
	fmt.Printf("Span: %s (%s to %s)\n", last.Sub(first), first.Format(time.RFC3339), last.Format(time.RFC3339))
	fmt.Printf("Distance: %.0f m\n", meters)
}
