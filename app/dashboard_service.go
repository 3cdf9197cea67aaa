package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/domain/stats"
	"csvdash/domain/table"
	"csvdash/internal/aggregate"
	"csvdash/internal/axis"
	"csvdash/internal/chartspec"
	"csvdash/internal/classify"
	apperrors "csvdash/internal/errors"
	"csvdash/internal/window"
	"csvdash/ports"
)

// DashboardService runs the load -> classify -> resolve -> summarize ->
// build pipeline. It holds no per-dataset state; every analysis starts from
// the dataset's immutable typed table.
type DashboardService struct {
	reader     ports.TableReader
	classifier *classify.Classifier
	resolver   *window.Resolver
	renderer   ports.ChartRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService wires the pipeline stages. renderer may be nil when
// only analysis is needed.
func NewDashboardService(
	reader ports.TableReader,
	classifier *classify.Classifier,
	resolver *window.Resolver,
	renderer ports.ChartRenderer,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		reader:     reader,
		classifier: classifier,
		resolver:   resolver,
		renderer:   renderer,
		logger:     logger.Named("dashboard"),
		now:        time.Now,
	}
}

// Load reads an upload and classifies it into a new Dataset.
func (s *DashboardService) Load(ctx context.Context, name string, src io.Reader, size int64) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.reader.Read(name, src)
	if err != nil {
		return nil, readError(name, err)
	}
	return s.FromTable(name, size, raw), nil
}

// LoadFile reads and classifies a file on disk.
func (s *DashboardService) LoadFile(ctx context.Context, path string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.reader.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	return s.FromTable(path, size, raw), nil
}

// FromTable classifies an already parsed raw table.
func (s *DashboardService) FromTable(name string, size int64, raw *table.Table) *dataset.Dataset {
	roles := s.classifier.Classify(raw)
	typed, failures := s.classifier.Coerce(raw, roles)

	ds := &dataset.Dataset{
		ID:            core.NewDatasetID(),
		Filename:      name,
		FileSize:      size,
		LoadedAt:      s.now().UTC(),
		Raw:           raw,
		Typed:         typed,
		Roles:         roles,
		ParseFailures: table.CountByColumn(failures),
	}
	s.logger.Info("dataset loaded",
		zap.String("dataset_id", ds.ID.String()),
		zap.String("filename", name),
		zap.Int("rows", raw.NumRows()),
		zap.Int("columns", raw.NumColumns()),
		zap.Int("parse_failures", len(failures)))
	return ds
}

// Analyze runs one full recomputation for req over ds. Period errors are
// returned; chart errors are reported as result.Rejection so statistics are
// still delivered.
func (s *DashboardService) Analyze(ctx context.Context, ds *dataset.Dataset, req AnalysisRequest) (*AnalysisResult, error) {
	if ds == nil || ds.Typed == nil {
		return nil, apperrors.InvalidInput("dataset has no table")
	}
	roles := ds.Roles
	result := &AnalysisResult{
		DatasetID:     ds.ID,
		Roles:         roles,
		TotalRows:     ds.Typed.NumRows(),
		ChartTypes:    axis.OfferedTypes(roles),
		ParseFailures: ds.ParseFailures,
	}

	working, err := s.workingTable(ds, req, result)
	if err != nil {
		return nil, err
	}
	result.Rows = working.NumRows()
	result.Empty = working.NumRows() == 0

	if result.Summaries, err = aggregate.SummarizeAll(ctx, working, roles); err != nil {
		return nil, apperrors.Wrap(err, "failed to summarize columns")
	}
	result.Frequencies = aggregate.FrequenciesAll(working, roles)

	if req.StatColumn != "" {
		if result.CustomStat, err = customStat(working, roles, req.StatColumn); err != nil {
			return nil, err
		}
	}

	if req.Chart != nil {
		s.buildChart(working, roles, *req.Chart, result)
	}

	n := req.PreviewRows
	if n <= 0 {
		n = DefaultPreviewRows
	}
	result.Preview = Preview{Columns: working.Columns(), Rows: working.Head(n)}
	return result, nil
}

// RenderChart analyzes req and draws the resulting chart to w. A refused
// chart is returned as an error carrying the rejection code.
func (s *DashboardService) RenderChart(ctx context.Context, ds *dataset.Dataset, req AnalysisRequest, w io.Writer) (*AnalysisResult, error) {
	if s.renderer == nil {
		return nil, apperrors.InternalError("no chart renderer configured")
	}
	if req.Chart == nil {
		return nil, apperrors.InvalidInput("chart request is required")
	}
	result, err := s.Analyze(ctx, ds, req)
	if err != nil {
		return nil, err
	}
	if result.Rejection != nil {
		return result, result.Rejection.Err()
	}
	if err := s.renderer.Render(ctx, result.Chart, w); err != nil {
		return result, apperrors.Wrap(err, "failed to render chart")
	}
	return result, nil
}

// ContentType is the media type of RenderChart's output.
func (s *DashboardService) ContentType() string {
	if s.renderer == nil {
		return ""
	}
	return s.renderer.ContentType()
}

// workingTable applies the period selection. Without any temporal column
// the table is used as is.
func (s *DashboardService) workingTable(ds *dataset.Dataset, req AnalysisRequest, result *AnalysisResult) (*table.Table, error) {
	anchor := req.Anchor
	if anchor == "" {
		temporal := ds.TemporalColumns()
		if len(temporal) == 0 {
			s.logger.Debug("no temporal column, period filter skipped", zap.String("dataset_id", ds.ID.String()))
			return ds.Typed, nil
		}
		anchor = temporal[0]
	}

	sel, err := req.Selection(anchor)
	if err != nil {
		return nil, err
	}
	prepared, dropped, err := s.resolver.Prepare(ds.Typed, ds.Roles, anchor)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid period anchor")
	}
	result.Anchor = anchor
	result.DroppedRows = dropped

	if prepared.NumRows() == 0 {
		return prepared, nil
	}
	w, filtered, err := s.resolver.Resolve(prepared, ds.Roles, sel)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid period")
	}
	result.Window = &w
	return filtered, nil
}

func (s *DashboardService) buildChart(t *table.Table, roles table.Roles, req chart.Request, result *AnalysisResult) {
	candidates, err := axis.Candidates(roles, req.Type)
	if err != nil {
		result.Rejection = rejectionFor(err)
		return
	}
	result.Candidates = &candidates

	spec, err := chartspec.Build(t, roles, axis.Defaults(req, roles))
	if err != nil {
		result.Rejection = rejectionFor(err)
		s.logger.Debug("chart rejected",
			zap.String("type", string(req.Type)),
			zap.String("code", result.Rejection.Code),
			zap.Error(err))
		return
	}
	result.Chart = spec
}

func customStat(t *table.Table, roles table.Roles, name string) (*stats.Summary, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, apperrors.Wrap(err, "unknown stat column")
	}
	if role := roles.Role(name); role != table.RoleNumeric {
		return nil, apperrors.Wrap(statColumnError(name, role), "invalid stat column")
	}
	summary := aggregate.Summarize(col)
	return &summary, nil
}

func readError(name string, err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrNoHeader) {
		return apperrors.Wrapf(err, "failed to read %s", name)
	}
	return apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read %s: %w", name, err))
}
