package ports

import (
	"context"
	"io"

	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/domain/table"
)

// TableReader parses an uploaded file into a raw, untyped table.
type TableReader interface {
	Read(name string, src io.Reader) (*table.Table, error)
	ReadFile(path string) (*table.Table, error)
}

// ChartRenderer draws a chart spec. The spec is the only seam between the
// dashboard core and a plotting backend.
type ChartRenderer interface {
	Render(ctx context.Context, spec *chart.Spec, w io.Writer) error
	ContentType() string
}

// DatasetStore keeps loaded datasets for the lifetime of a session.
type DatasetStore interface {
	Put(ctx context.Context, ds *dataset.Dataset) error
	Get(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	Delete(ctx context.Context, id core.DatasetID) error
	List(ctx context.Context) ([]*dataset.Dataset, error)
}
