// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/okian/engage/internal/adapters/repository"
	"github.com/okian/engage/internal/adapters/workbook"
	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/types"
	"github.com/okian/engage/pkg/logger"
	"github.com/okian/engage/pkg/metrics"
)

// Service manages analysis sessions: one uploaded workbook, its settings,
// the latest charts and the charts saved to the session workbook.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	images   analytics.ImageRenderer
	defaults analytics.Settings

	maxSessions int
	idleTTL     time.Duration

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the in-memory session store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithImages attaches image URLs to line and bar charts.
func WithImages(r analytics.ImageRenderer) Option {
	return func(s *Service) {
		s.images = r
	}
}

// WithDefaults sets the settings new sessions start with.
func WithDefaults(settings analytics.Settings) Option {
	return func(s *Service) {
		s.defaults = settings
	}
}

// WithMaxSessions caps the number of open sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithIdleTTL sets how long an untouched session is kept when room is needed.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaults:    analytics.DefaultSettings(),
		maxSessions: 256,
		idleTTL:     2 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if err := s.defaults.Validate(); err != nil {
		return fmt.Errorf("default settings: %w", err)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(
			repository.WithMaxSessions(s.maxSessions),
			repository.WithIdleTTL(s.idleTTL),
		)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "analytics service started",
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("idleTTL", s.idleTTL),
		logger.Bool("chartImages", s.images != nil),
	)
	return nil
}

// Stop marks the service as stopped. Open sessions are dropped with the process.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// LoadWorkbook ingests an uploaded workbook and opens a session over it.
func (s *Service) LoadWorkbook(ctx context.Context, r io.Reader) (types.SessionInfo, error) {
	if err := s.ready(); err != nil {
		return types.SessionInfo{}, err
	}
	start := time.Now()

	data, err := workbook.Load(r)
	if err != nil {
		code := analytics.Code(err)
		metrics.RecordWorkbookError(code)
		metrics.RecordErrorByComponent("service", code)
		s.logger.Warn(ctx, "workbook rejected", logger.Error(err))
		return types.SessionInfo{}, fmt.Errorf("%w: %w", ErrReadWorkbook, err)
	}

	opts := []analytics.Option{}
	if s.images != nil {
		opts = append(opts, analytics.WithImages(s.images))
	}
	sess, err := s.store.Create(ctx, analytics.New(data, opts...), s.defaults)
	if err != nil {
		return types.SessionInfo{}, s.storeError(err)
	}

	took := time.Since(start)
	metrics.RecordWorkbookUpload(len(data.Records))
	metrics.RecordWorkbookLoadDuration(float64(took.Milliseconds()))
	s.logger.Info(ctx, "workbook loaded",
		logger.String("session_id", sess.ID),
		logger.Int("records", len(data.Records)),
		logger.Int("categories", data.Catalog.Len()),
		logger.Duration("took", took),
	)
	return info(sess), nil
}

// Session returns a session summary and its current settings.
func (s *Service) Session(ctx context.Context, id string) (types.SessionInfo, analytics.Settings, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return types.SessionInfo{}, analytics.Settings{}, err
	}
	return info(sess), sess.Settings, nil
}

// UpdateSettings validates and stores the settings of a session. Previously
// generated charts are kept until the next Generate.
func (s *Service) UpdateSettings(ctx context.Context, id string, settings analytics.Settings) (analytics.Settings, error) {
	if err := s.ready(); err != nil {
		return analytics.Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return analytics.Settings{}, err
	}
	sess, err := s.store.Update(ctx, id, func(sess *repository.Session) error {
		if err := checkMajors(sess.Engine, settings.Cohort.Majors); err != nil {
			return err
		}
		sess.Settings = settings
		return nil
	})
	if err != nil {
		return analytics.Settings{}, s.storeError(err)
	}
	s.logger.Debug(ctx, "settings updated", logger.String("session_id", id), logger.Any("settings", settings))
	return sess.Settings, nil
}

// Generate builds the requested charts, all of them when kinds is empty, and
// makes them the session's current charts.
func (s *Service) Generate(ctx context.Context, id string, kinds []types.ChartKind) (types.ChartRun, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return types.ChartRun{}, err
	}
	if len(kinds) == 0 {
		kinds = types.AllKinds
	}

	start := time.Now()
	res, err := sess.Engine.Run(ctx, sess.Settings, kinds)
	if err != nil {
		metrics.RecordErrorByComponent("service", analytics.Code(err))
		s.logger.Warn(ctx, "chart run failed", logger.String("session_id", id), logger.Error(err))
		return types.ChartRun{}, err
	}
	took := time.Since(start)
	metrics.RecordRunDuration(float64(took.Milliseconds()))
	metrics.RecordCohortSize(res.Records)
	for _, c := range res.Charts {
		metrics.RecordChartGenerated(string(c.Kind))
	}
	for _, e := range res.Errors {
		metrics.RecordChartError(string(e.Kind), e.Code)
	}

	if _, err := s.store.Update(ctx, id, func(sess *repository.Session) error {
		sess.Charts = res.Charts
		return nil
	}); err != nil {
		return types.ChartRun{}, s.storeError(err)
	}

	s.logger.Info(ctx, "charts generated",
		logger.String("session_id", id),
		logger.Int("charts", len(res.Charts)),
		logger.Int("failed", len(res.Errors)),
		logger.Int("records", res.Records),
		logger.Duration("took", took),
	)
	return types.ChartRun{
		Description: res.Description,
		Records:     res.Records,
		People:      res.People,
		Charts:      res.Charts,
		Errors:      res.Errors,
	}, nil
}

// Charts returns the session's current charts.
func (s *Service) Charts(ctx context.Context, id string) ([]types.Chart, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Charts, nil
}

// Export writes the filtered records of a session as an xlsx workbook.
func (s *Service) Export(ctx context.Context, id string, w io.Writer) error {
	sess, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	table, err := sess.Engine.Export(ctx, sess.Settings)
	if err != nil {
		metrics.RecordErrorByComponent("service", analytics.Code(err))
		return err
	}
	if err := workbook.WriteTable(w, table); err != nil {
		metrics.RecordErrorByComponent("service", "export_write")
		return fmt.Errorf("write export: %w", err)
	}
	metrics.RecordExport()
	s.logger.Info(ctx, "data exported", logger.String("session_id", id), logger.Int("rows", len(table.Rows)))
	return nil
}

// DeleteSession closes a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(err)
	}
	s.logger.Info(ctx, "session closed", logger.String("session_id", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(goroutines)

	stats := map[string]interface{}{
		"started":     s.started,
		"maxSessions": s.maxSessions,
		"idleTTL":     s.idleTTL.String(),
		"memoryBytes": mem.Alloc,
		"goroutines":  goroutines,
	}
	if s.started {
		sessions := s.store.Count(context.Background())
		stats["sessions"] = sessions
		stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
		metrics.UpdateActiveSessions(sessions)
	}
	return stats
}

func (s *Service) get(ctx context.Context, id string) (repository.Session, error) {
	if err := s.ready(); err != nil {
		return repository.Session{}, err
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return repository.Session{}, s.storeError(err)
	}
	return sess, nil
}

// storeError tags store failures with the shared kinds the transports map.
func (s *Service) storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		return fmt.Errorf("%w: %w", types.ErrNotFound, err)
	case errors.Is(err, repository.ErrTooManySessions):
		return fmt.Errorf("%w: %w", types.ErrUnavailable, err)
	}
	return err
}

func info(sess repository.Session) types.SessionInfo {
	out := types.SessionInfo{
		ID:              sess.ID,
		Charts:          len(sess.Charts),
		WorkbookEntries: len(sess.Workbook),
	}
	if sess.Engine == nil {
		return out
	}
	data := sess.Engine.Dataset()
	out.Records = len(data.Records)
	people := map[string]struct{}{}
	for _, r := range data.Records {
		people[r.PersonID] = struct{}{}
	}
	out.People = len(people)
	out.Categories = data.Catalog.ByImportance()
	out.GraduationYears = data.GraduationYears
	out.Majors = data.Majors
	for _, g := range data.Graduates {
		out.GraduateClasses = append(out.GraduateClasses, g.Name)
	}
	return out
}
