package pipeline

import (
	"context"
	"log/slog"

	"github.com/oceanstream/argo-etl-service/internal/domain"
	"github.com/oceanstream/argo-etl-service/internal/observability"
	"github.com/oceanstream/argo-etl-service/internal/qc"
)

// QCTransformer implements Transformer by parsing raw profile messages and
// running them through the QC engine.
type QCTransformer struct {
	engine  *qc.Engine
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a QCTransformer around a configured engine.
func NewTransformer(engine *qc.Engine, logger *slog.Logger, metrics *observability.Metrics) *QCTransformer {
	return &QCTransformer{
		engine:  engine,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *QCTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.QCResult, error) {
	profile, err := domain.ParseRawProfile(raw)
	if err != nil {
		return domain.QCResult{}, err
	}

	report, err := t.engine.Run(ctx, profile)
	if err != nil {
		return domain.QCResult{}, err
	}

	t.observe(report)

	if report.DataQuality == domain.QualityUnusable {
		t.logger.Debug("profile classified unusable",
			"profile_id", report.ProfileID,
			"issues", report.Issues,
		)
	}

	return domain.QCResult{
		Profile:     profile,
		Report:      report,
		ProcessedAt: domain.Now(),
	}, nil
}

func (t *QCTransformer) observe(report domain.QCReport) {
	t.metrics.ProfileQuality.WithLabelValues(string(report.DataQuality)).Inc()
	if report.DataQuality == domain.QualityUnusable {
		t.metrics.ProfilesRejected.Inc()
	}

	t.metrics.DetectorHits.WithLabelValues("statistical_outlier").Add(float64(report.OutliersRemoved))
	t.metrics.DetectorHits.WithLabelValues("spike").Add(float64(report.SpikeDetections))
	t.metrics.DetectorHits.WithLabelValues("gradient").Add(float64(report.GradientAnomalies))
	t.metrics.DetectorHits.WithLabelValues("density_inversion").Add(float64(report.DensityInversions))
}
