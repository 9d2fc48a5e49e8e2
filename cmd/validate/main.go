// Command validate performs integrity checks on a replay track fixture and,
// optionally, on a dump of the location records the relay published. It
// verifies field ranges, movement plausibility, that the replay binding
// delivers every fix in order through the adapter, and that published records
// trace back to the track.
//
// Usage:
//
//	go run ./cmd/validate -track data/track.json
//	go run ./cmd/validate -track data/track.json -records published.json -device-id device-1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/adapter/replay"
	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/couchcryptid/background-geolocation/internal/geolocation"
	"github.com/couchcryptid/background-geolocation/internal/observability"
	"github.com/jonboulle/clockwork"
)

const earthRadiusM = 6371000.0

// replayEpoch is the fake clock start for the replay dry run.
var replayEpoch = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	trackPath := flag.String("track", "data/track.json", "path to the replay track fixture")
	recordsPath := flag.String("records", "", "optional JSON array of published location records")
	deviceID := flag.String("device-id", "", "expected device id on published records")
	maxSpeed := flag.Float64("max-speed", 70, "fastest plausible movement between fixes in m/s")
	flag.Parse()

	if *trackPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*trackPath, *recordsPath, *deviceID, *maxSpeed); code != 0 {
		os.Exit(code)
	}
}

func run(trackPath, recordsPath, deviceID string, maxSpeed float64) int {
	fmt.Println("=== Location Data Integrity Validation ===")
	fmt.Println()

	track, err := loadJSON[domain.Location](trackPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load track: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTrackFields(track),
		validateMovement(track, maxSpeed),
		validateReplay(track),
	}

	var records []domain.LocationRecord
	if recordsPath != "" {
		records, err = loadJSON[domain.LocationRecord](recordsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load records: %v\n", err)
			return 1
		}
		phases = append(phases, validateRecords(records, track, deviceID))
	}

	if report(phases, len(track), len(records)) {
		return 0
	}
	return 1
}

// report prints the summary and details; it returns true when all passed.
func report(phases []*phase, fixes, records int) bool {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Fixes: %d track, %d published records\n", fixes, records)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return true
	}
	fmt.Println("\nValidation FAILED.")
	return false
}

// ── Data loading ──

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// ── Phase 1: field ranges ──

func validateTrackFields(track []domain.Location) *phase {
	p := &phase{name: "Track field ranges"}
	if err := replay.ValidateTrack(track); err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				p.errorf("%v", e)
			}
		} else {
			p.errorf("%v", err)
		}
	}

	seen := make(map[int64]int, len(track))
	for i, loc := range track {
		if loc.ID == 0 {
			continue
		}
		if prev, dup := seen[loc.ID]; dup {
			p.errorf("fix %d: id %d already used by fix %d", i, loc.ID, prev)
		}
		seen[loc.ID] = i
	}
	return p
}

// ── Phase 2: movement plausibility ──

func validateMovement(track []domain.Location, maxSpeed float64) *phase {
	p := &phase{name: "Movement plausibility"}
	for i := 1; i < len(track); i++ {
		prev, cur := track[i-1], track[i]
		if prev.Time == 0 || cur.Time == 0 {
			continue
		}
		dt := time.Duration(cur.Time-prev.Time) * time.Millisecond
		if dt <= 0 {
			p.errorf("fix %d: no time elapsed since fix %d", i, i-1)
			continue
		}
		meters := distance(prev, cur)
		if implied := meters / dt.Seconds(); implied > maxSpeed {
			p.errorf("fix %d: implied speed %.1f m/s over %s exceeds %.1f m/s", i, implied, dt, maxSpeed)
		}
	}
	return p
}

func distance(a, b domain.Location) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(b.Latitude - a.Latitude)
	dLon := rad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Latitude))*math.Cos(rad(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// ── Phase 3: replay dry run ──

// validateReplay drives the track through the replay binding and the
// geolocation provider on a fake clock, and checks every fix arrives once,
// in order, stamped with the replay time.
func validateReplay(track []domain.Location) *phase {
	p := &phase{name: "Replay delivers every fix in order"}
	if len(track) == 0 {
		p.errorf("track is empty")
		return p
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewUnregisteredMetrics()
	clock := clockwork.NewFakeClockAt(replayEpoch)
	binding := replay.New(track, false, clock, logger, metrics)
	provider := geolocation.NewProvider(binding,
		geolocation.WithLogger(logger),
		geolocation.WithMetrics(metrics),
		geolocation.WithStreamBuffer(len(track)),
	)

	sub := provider.EventLocation().Subscribe(ctx)
	defer sub.Unsubscribe()

	provider.Configure(domain.ConfigureOptions{Interval: domain.Ptr(1000)})
	provider.Start()
	defer provider.Stop()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		p.errorf("replay never started: %v", err)
		return p
	}

	for i, want := range track {
		clock.Advance(time.Second)
		select {
		case got, ok := <-sub.Values():
			if !ok {
				p.errorf("fix %d: location stream ended early: %v", i, sub.Err())
				return p
			}
			if got.ID != want.ID || got.Latitude != want.Latitude || got.Longitude != want.Longitude {
				p.errorf("fix %d: replayed id=%d (%.6f,%.6f), want id=%d (%.6f,%.6f)",
					i, got.ID, got.Latitude, got.Longitude, want.ID, want.Latitude, want.Longitude)
			}
			if wantTime := clock.Now().UnixMilli(); got.Time != wantTime {
				p.errorf("fix %d: stamped time %d, want %d", i, got.Time, wantTime)
			}
		case <-time.After(2 * time.Second):
			p.errorf("fix %d: not replayed", i)
			return p
		}
	}
	return p
}

// ── Phase 4: published records ──

func validateRecords(records []domain.LocationRecord, track []domain.Location, deviceID string) *phase {
	p := &phase{name: "Published records trace to track"}

	type coord struct{ lat, lon float64 }
	known := make(map[coord]bool, len(track))
	for _, loc := range track {
		known[coord{loc.Latitude, loc.Longitude}] = true
	}

	for i, rec := range records {
		if rec.DeviceID == "" {
			p.errorf("record %d: missing device_id", i)
		} else if deviceID != "" && rec.DeviceID != deviceID {
			p.errorf("record %d: device_id %q, want %q", i, rec.DeviceID, deviceID)
		}
		if rec.ReceivedAt.IsZero() {
			p.errorf("record %d: missing received_at", i)
		}
		switch rec.GeoSource {
		case "", domain.GeoSourceReverse, domain.GeoSourceNone, domain.GeoSourceFailed:
		default:
			p.errorf("record %d: unknown geo_source %q", i, rec.GeoSource)
		}
		if rec.GeoSource == domain.GeoSourceReverse && rec.FormattedAddress == "" {
			p.errorf("record %d: geo_source reverse without formatted_address", i)
		}
		if !known[coord{rec.Latitude, rec.Longitude}] {
			p.errorf("record %d: (%.6f,%.6f) is not a track fix", i, rec.Latitude, rec.Longitude)
		}
	}
	return p
}
