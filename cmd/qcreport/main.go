// Command qcreport runs the quality-control engine over a JSON file of raw
// profiles and prints one report per profile, without Kafka or a database.
// It is the offline counterpart of the ETL service, useful for inspecting a
// float's data or tuning thresholds.
//
// Usage:
//
//	go run ./cmd/qcreport -in profiles.json [-thresholds thresholds.json] [-v]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/oceanstream/argo-etl-service/internal/domain"
	"github.com/oceanstream/argo-etl-service/internal/qc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "qcreport: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "", "path to JSON array of raw profiles")
	thresholdsPath := flag.String("thresholds", "", "optional JSON thresholds file")
	verbose := flag.Bool("v", false, "print full JSON reports instead of one-line summaries")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	thresholds := qc.DefaultThresholds()
	if *thresholdsPath != "" {
		var err error
		thresholds, err = qc.LoadThresholdsFile(*thresholdsPath)
		if err != nil {
			return err
		}
	}

	engine, err := qc.NewEngine(thresholds)
	if err != nil {
		return err
	}

	records, err := loadProfiles(*in)
	if err != nil {
		return err
	}

	qualityCounts := map[domain.Quality]int{}
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		profile, err := domain.ParseRawProfile(domain.RawEvent{Value: data})
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		report, err := engine.Run(context.Background(), profile)
		if err != nil {
			return fmt.Errorf("profile %s: %w", profile.ID, err)
		}
		qualityCounts[report.DataQuality]++

		if *verbose {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			continue
		}
		printSummary(report)
	}

	fmt.Printf("\n%d profiles: ", len(records))
	for _, q := range []domain.Quality{
		domain.QualityExcellent, domain.QualityGood, domain.QualityAcceptable,
		domain.QualityPoor, domain.QualityUnusable,
	} {
		fmt.Printf("%s=%d ", q, qualityCounts[q])
	}
	fmt.Println()

	if n := qualityCounts[domain.QualityUnusable]; n > 0 {
		return fmt.Errorf("%d of %d profiles unusable", n, len(records))
	}
	return nil
}

func loadProfiles(path string) ([]domain.RawProfileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.RawProfileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

func printSummary(report domain.QCReport) {
	fmt.Printf("%-16s %-10s good=%5.1f%% outliers=%d spikes=%d gradients=%d inversions=%d\n",
		report.ProfileID, report.DataQuality, report.GoodDataPercentage,
		report.OutliersRemoved, report.SpikeDetections,
		report.GradientAnomalies, report.DensityInversions,
	)
	for _, issue := range report.Issues {
		fmt.Printf("  - %s\n", issue)
	}
}
