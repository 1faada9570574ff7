package qc

import "github.com/oceanstream/argo-etl-service/internal/domain"

// classify maps a good-data percentage to a quality category. Band edges
// belong to the band whose range they close: exactly 90 is good (excellent
// is strictly above 90), exactly 80 is good, exactly 70 acceptable, exactly
// 50 poor.
func classify(goodPct float64) domain.Quality {
	switch {
	case goodPct > 90:
		return domain.QualityExcellent
	case goodPct >= 80:
		return domain.QualityGood
	case goodPct >= 70:
		return domain.QualityAcceptable
	case goodPct >= 50:
		return domain.QualityPoor
	default:
		return domain.QualityUnusable
	}
}
