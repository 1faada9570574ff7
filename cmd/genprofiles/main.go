// Command genprofiles writes a JSON fixture of synthetic Argo profiles
// covering the quality spectrum: clean casts, spiked and gappy ones, and
// profiles with values outside physical limits. It uses the actual domain
// and QC packages so the fixture's expected verdicts match real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genprofiles -out data/mock/argo_profiles.json [-count 20]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/oceanstream/argo-etl-service/internal/domain"
	"github.com/oceanstream/argo-etl-service/internal/qc"
)

// juldBase is 2024-03-17T00:00:00Z expressed as days since the Argo epoch.
const juldBase = 27104.0

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the profiles JSON fixture")
	count := flag.Int("count", 20, "number of profiles to generate")
	seed := flag.Int64("seed", 1, "random seed, fixed for reproducible fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))

	records := make([]domain.RawProfileRecord, 0, *count)
	for i := 0; i < *count; i++ {
		records = append(records, generate(rng, i))
	}

	if err := writeJSON(*out, records); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d profiles: %s", len(records), *out)

	return printExpectedVerdicts(records)
}

// generate produces one synthetic profile. Every fifth profile carries a
// temperature spike, every seventh an out-of-range salinity, and every
// eleventh is truncated below the minimum length.
func generate(rng *rand.Rand, i int) domain.RawProfileRecord {
	platform := fmt.Sprintf("59042%02d", 90+i%5)
	levels := 20

	rec := domain.RawProfileRecord{
		PlatformNumber: platform,
		CycleNumber:    i + 1,
		Juld:           juldBase + float64(i)/4,
		Latitude:       ptr(-60 + 120*rng.Float64()),
		Longitude:      ptr(-180 + 360*rng.Float64()),
	}

	if i%11 == 10 {
		levels = 3
	}

	surfaceTemp := 15 + 10*rng.Float64()
	for l := 0; l < levels; l++ {
		pres := 10.0 + 25*float64(l)
		temp := surfaceTemp - 0.1*pres*(0.8+0.4*rng.Float64())
		psal := 34.5 + 0.002*pres

		if i%5 == 4 && l == levels/2 {
			temp += 12 // spike well past the 5.0 threshold
		}
		if i%7 == 6 && l == levels/3 {
			psal = 45 // outside the PSAL physical range
		}

		rec.Pres = append(rec.Pres, ptr(pres))
		rec.Temp = append(rec.Temp, ptr(round2(temp)))
		rec.Psal = append(rec.Psal, ptr(round2(psal)))
	}
	return rec
}

// printExpectedVerdicts runs the generated fixture through the engine and
// prints the per-quality counts for updating test assertions.
func printExpectedVerdicts(records []domain.RawProfileRecord) error {
	engine, err := qc.NewEngine(qc.DefaultThresholds())
	if err != nil {
		return err
	}

	counts := map[domain.Quality]int{}
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		profile, err := domain.ParseRawProfile(domain.RawEvent{Value: data})
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		report, err := engine.Run(context.Background(), profile)
		if err != nil {
			return fmt.Errorf("profile %s: %w", profile.ID, err)
		}
		counts[report.DataQuality]++
	}

	fmt.Println("=== Expected verdicts for test assertions ===")
	for _, q := range []domain.Quality{
		domain.QualityExcellent, domain.QualityGood, domain.QualityAcceptable,
		domain.QualityPoor, domain.QualityUnusable,
	} {
		fmt.Printf("%s=%d\n", q, counts[q])
	}
	return nil
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

func ptr(v float64) *float64 { return &v }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
