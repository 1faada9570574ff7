package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// QCReport is the immutable quality-control verdict for one profile.
// It is built exactly once per QC run and is safe to serialize directly;
// encoding/json sorts the flags_summary keys, so identical inputs produce
// byte-identical output.
type QCReport struct {
	ProfileID          string         `json:"profile_id"`
	TotalMeasurements  int            `json:"total_measurements"`
	GoodDataPercentage float64        `json:"good_data_percentage"`
	FlagsSummary       map[Flag]int   `json:"flags_summary"`
	OutliersRemoved    int            `json:"outliers_removed"`
	SpikeDetections    int            `json:"spike_detections"`
	GradientAnomalies  int            `json:"gradient_anomalies"`
	DensityInversions  int            `json:"density_inversions"`
	DataQuality        Quality        `json:"data_quality"`
	Issues             []string       `json:"issues"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// QCResult pairs a profile with its quality report; it is the unit handed
// to loaders after transformation.
type QCResult struct {
	Profile     Profile
	Report      QCReport
	ProcessedAt time.Time
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// outputPayload is the wire shape of a QCResult. The profile travels in its
// raw-record form so missing values serialize as nulls.
type outputPayload struct {
	Profile     RawProfileRecord `json:"profile"`
	Report      QCReport         `json:"report"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// SerializeQCResult marshals a QCResult into a sink message keyed by profile
// ID, with routing headers for downstream consumers.
func SerializeQCResult(res QCResult) (OutputEvent, error) {
	data, err := json.Marshal(outputPayload{
		Profile:     res.Profile.Record(),
		Report:      res.Report,
		ProcessedAt: res.ProcessedAt,
	})
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize qc result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(res.Profile.ID),
		Value: data,
		Headers: map[string]string{
			"platform_number": res.Profile.PlatformNumber,
			"data_quality":    string(res.Report.DataQuality),
			"processed_at":    res.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
