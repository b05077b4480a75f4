package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"territorio/internal/models"
)

var ErrUnknownRegion = errors.New("unknown region")

// Dataset is the aggregated, read-only result of an ETL run.
type Dataset struct {
	regions  []string
	payloads map[string]*models.Payload
}

// Regions returns the region names in alphabetical order.
func (d *Dataset) Regions() []string {
	return append([]string(nil), d.regions...)
}

func (d *Dataset) Payload(region string) (*models.Payload, bool) {
	p, ok := d.payloads[region]
	return p, ok
}

// Fetch serves a payload in-process; it satisfies dashboard.Source.
func (d *Dataset) Fetch(ctx context.Context, region string) (*models.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := d.payloads[region]
	if !ok {
		return nil, fmt.Errorf("%q: %w", region, ErrUnknownRegion)
	}
	return p, nil
}

// Load reads both source files concurrently and aggregates them. An empty
// businessPath skips the business directory. The first failing load, or
// ctx being cancelled, stops the other.
func Load(ctx context.Context, censusPath, businessPath string) (*Dataset, error) {
	var (
		census     *CensusStore
		businesses *BusinessStore
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		census, err = LoadCensus(gctx, censusPath)
		return err
	})
	if businessPath != "" {
		g.Go(func() error {
			var err error
			businesses, err = LoadBusinesses(gctx, businessPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Aggregate(census, businesses), nil
}
