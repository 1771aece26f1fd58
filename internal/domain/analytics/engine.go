// Package analytics turns a dataset and a set of session settings into chart-ready tables.
package analytics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/okian/engage/internal/domain/catalog"
	"github.com/okian/engage/internal/domain/cohort"
	"github.com/okian/engage/internal/domain/dataset"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/pathway"
	"github.com/okian/engage/internal/domain/retention"
	"github.com/okian/engage/internal/domain/semester"
	"github.com/okian/engage/internal/domain/transition"
	"github.com/okian/engage/internal/domain/trend"
	"github.com/okian/engage/internal/domain/types"
)

// ImageRenderer turns a line or bar chart into a static image URL.
type ImageRenderer interface {
	ImageURL(chart types.Chart) (string, error)
}

// Engine computes charts over one dataset. It holds no per-run state and is
// safe for concurrent use.
type Engine struct {
	data   *dataset.Dataset
	images ImageRenderer
}

// Option configures an Engine.
type Option func(*Engine)

// WithImages attaches image URLs to line and bar charts.
func WithImages(r ImageRenderer) Option {
	return func(e *Engine) {
		e.images = r
	}
}

// New creates an engine over data.
func New(data *dataset.Dataset, opts ...Option) *Engine {
	e := &Engine{data: data}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dataset returns the dataset the engine reads.
func (e *Engine) Dataset() *dataset.Dataset { return e.data }

// Result is the output of Run.
type Result struct {
	Description string
	Records     int
	People      int
	Charts      []types.Chart
	Errors      []types.ChartError
}

// Run validates settings, applies the cohort filter and builds every requested
// chart. Settings, filter and catalog failures fail the whole run; a chart that
// cannot be built is reported in Result.Errors and the others are still returned.
func (e *Engine) Run(ctx context.Context, s Settings, kinds []types.ChartKind) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r, err := e.prepare(s)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Description: r.description,
		Records:     len(r.records),
		People:      len(r.groups),
	}
	for _, kind := range kinds {
		build, ok := builders[kind]
		if !ok {
			res.Errors = append(res.Errors, chartError(kind,
				model.NewKind("analytics.Run", model.ErrConfiguration, "unknown chart kind %q", kind)))
			continue
		}
		chart, err := build(r)
		if err != nil {
			res.Errors = append(res.Errors, chartError(kind, err))
			continue
		}
		chart.ID = uuid.NewString()
		chart.Kind = kind
		chart.Subtitle = r.description
		if e.images != nil && (chart.Type == types.TypeLine || chart.Type == types.TypeBar) {
			url, err := e.images.ImageURL(chart)
			if err != nil {
				res.Errors = append(res.Errors, chartError(kind, err))
				continue
			}
			chart.ImageURL = url
		}
		res.Charts = append(res.Charts, chart)
	}
	return res, nil
}

// Code maps an error to the short code reported to clients.
func Code(err error) string {
	switch {
	case errors.Is(err, model.ErrParse):
		return "parse_error"
	case errors.Is(err, model.ErrLookup):
		return "lookup_error"
	case errors.Is(err, model.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, model.ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrUnavailable):
		return "unavailable"
	default:
		return "internal_error"
	}
}

func chartError(kind types.ChartKind, err error) types.ChartError {
	return types.ChartError{Kind: kind, Code: Code(err), Message: err.Error()}
}

// run carries the filtered view of one Run. Derived structures are built on first use.
type run struct {
	data        *dataset.Dataset
	settings    Settings
	mode        semester.Aggregation
	records     []model.Record
	groups      []model.PersonGroup
	catalog     catalog.Catalog
	description string

	matrices map[transition.Semantics]*transition.Matrix
	tensor   *pathway.Tensor
	report   *retention.Report
}

func (e *Engine) prepare(s Settings) (*run, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	mode, err := semester.ParseAggregation(s.Aggregation)
	if err != nil {
		return nil, err
	}
	filtered, err := cohort.Apply(e.data.Records, s.Cohort, e.data.KnownGraduates())
	if err != nil {
		return nil, err
	}
	cat, err := e.data.Catalog.WithFrequency(filtered.Records)
	if err != nil {
		return nil, err
	}
	return &run{
		data:        e.data,
		settings:    s,
		mode:        mode,
		records:     filtered.Records,
		groups:      model.Group(filtered.Records),
		catalog:     cat,
		description: filtered.Description,
		matrices:    map[transition.Semantics]*transition.Matrix{},
	}, nil
}

func (r *run) matrix(sem transition.Semantics) (*transition.Matrix, error) {
	if m, ok := r.matrices[sem]; ok {
		return m, nil
	}
	m, err := transition.Build(r.groups, r.catalog, sem)
	if err != nil {
		return nil, err
	}
	r.matrices[sem] = &m
	return &m, nil
}

func (r *run) pathways() (*pathway.Tensor, error) {
	if r.tensor != nil {
		return r.tensor, nil
	}
	t, err := pathway.Build(r.groups, r.catalog, r.settings.IncludeNeverBefore)
	if err != nil {
		return nil, err
	}
	r.tensor = &t
	return r.tensor, nil
}

func (r *run) retention() (*retention.Report, error) {
	if r.report != nil {
		return r.report, nil
	}
	rep, err := retention.Build(r.groups, r.catalog, retention.Options{
		Aggregation:   r.mode,
		MinSampleSize: r.settings.MinSampleSize,
	})
	if err != nil {
		return nil, err
	}
	r.report = &rep
	return r.report, nil
}

// keep restricts graduate denominators to the selected majors.
func (r *run) keep() trend.Keep {
	majors := r.settings.Cohort.Majors
	if len(majors) == 0 {
		return nil
	}
	return func(email string) bool {
		return r.data.HasMajor(email, majors)
	}
}

var builders = map[types.ChartKind]func(*run) (types.Chart, error){
	types.KindPathways:              buildSankey,
	types.KindRelationshipsUnique:   func(r *run) (types.Chart, error) { return buildHeatmap(r, transition.Unique) },
	types.KindRelationshipsTotal:    func(r *run) (types.Chart, error) { return buildHeatmap(r, transition.Total) },
	types.KindFirstEngagementsTotal: scatterBuilder(firstEngagementsTotal),
	types.KindFirstEngagementsUniq:  scatterBuilder(firstEngagementsUnique),
	types.KindReturnRatesAll:        scatterBuilder(returnRatesAll),
	types.KindReturnRatesFirst:      scatterBuilder(returnRatesFirst),
	types.KindUniqueEngagementRates: scatterBuilder(uniqueEngagementRates),
	types.KindOneAndDone:            scatterBuilder(oneAndDone),
	types.KindGraduateEngagement:    buildGraduateEngagement,
	types.KindEngagementTimeline:    buildTimeline,
	types.KindEngagementVolume:      buildVolume,
}
