package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/carbonbox/internal/config"
)

// Variant is one named configuration in a comparison.
type Variant struct {
	Name   string
	Config *config.Config
}

// Compare runs every variant concurrently, one goroutine and one ODE each.
// Results keep the order of variants; the first failure cancels the rest.
func Compare(ctx context.Context, variants []Variant, registry *Registry, log logrus.FieldLogger) ([]*Result, error) {
	if len(variants) == 0 {
		return nil, nil
	}
	if registry == nil {
		registry = NewRegistry()
	}

	results := make([]*Result, len(variants))
	g, ctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		i, v := i, v
		g.Go(func() error {
			var vlog logrus.FieldLogger
			if log != nil {
				vlog = log.WithField("variant", v.Name)
			}
			res, err := New(v.Config, registry, vlog).Run(ctx)
			if err != nil {
				return fmt.Errorf("variant %s: %w", v.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
