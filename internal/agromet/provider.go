package agromet

import (
	"context"
	"errors"
)

// ErrNoData is returned by a MetricSource when the queried dataset holds no
// observations for the point and window. It is not a failure: the service
// maps it to the NoData sentinel for that field only.
var ErrNoData = errors.New("no data for requested point")

// MetricSource abstracts the satellite-data service. Each method aggregates
// one gridded dataset to a single scalar by arithmetic mean over the point.
type MetricSource interface {
	NDVI(ctx context.Context, pt Point) (float64, error)
	SoilMoistureTop(ctx context.Context, pt Point) (float64, error)
	Rainfall(ctx context.Context, pt Point) (float64, error)
}

// Adviser turns a prompt into free text; used for the bilingual advice.
type Adviser interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
