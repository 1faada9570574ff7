package pipeline

import (
	"context"
	"fmt"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. The first failure
// aborts the batch so the pipeline retries it whole; loaders must therefore
// tolerate redelivery of results they already accepted.
type MultiLoader struct {
	loaders []BatchLoader
}

// NewMultiLoader combines the given loaders. A single loader is returned
// unwrapped.
func NewMultiLoader(loaders ...BatchLoader) BatchLoader {
	if len(loaders) == 1 {
		return loaders[0]
	}
	return &MultiLoader{loaders: loaders}
}

func (m *MultiLoader) LoadBatch(ctx context.Context, results []domain.QCResult) error {
	for i, l := range m.loaders {
		if err := l.LoadBatch(ctx, results); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
