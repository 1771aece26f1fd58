package service

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/engage/internal/adapters/repository"
	"github.com/okian/engage/internal/adapters/workbook"
	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/types"
	"github.com/okian/engage/pkg/logger"
	"github.com/okian/engage/pkg/metrics"
)

// Workbook returns the charts saved to the session workbook, oldest first.
func (s *Service) Workbook(ctx context.Context, id string) ([]types.WorkbookEntry, error) {
	sess, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Workbook, nil
}

// AddToWorkbook saves one of the current charts with a note.
func (s *Service) AddToWorkbook(ctx context.Context, id, chartID, note string) ([]types.WorkbookEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	sess, err := s.store.Update(ctx, id, func(sess *repository.Session) error {
		for _, c := range sess.Charts {
			if c.ID == chartID {
				sess.Workbook = append(sess.Workbook, types.WorkbookEntry{Chart: c, Note: note})
				return nil
			}
		}
		return fmt.Errorf("%w: chart %q", types.ErrNotFound, chartID)
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	s.logger.Debug(ctx, "chart saved to workbook",
		logger.String("session_id", id),
		logger.String("chart_id", chartID),
		logger.Int("entries", len(sess.Workbook)),
	)
	return sess.Workbook, nil
}

// UpdateNote replaces the note of every saved copy of chartID.
func (s *Service) UpdateNote(ctx context.Context, id, chartID, note string) ([]types.WorkbookEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	sess, err := s.store.Update(ctx, id, func(sess *repository.Session) error {
		found := false
		for i := range sess.Workbook {
			if sess.Workbook[i].Chart.ID == chartID {
				sess.Workbook[i].Note = note
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: workbook chart %q", types.ErrNotFound, chartID)
		}
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	return sess.Workbook, nil
}

// ResetWorkbook removes every saved chart.
func (s *Service) ResetWorkbook(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.store.Update(ctx, id, func(sess *repository.Session) error {
		sess.Workbook = nil
		return nil
	}); err != nil {
		return s.storeError(err)
	}
	s.logger.Debug(ctx, "workbook reset", logger.String("session_id", id))
	return nil
}

// WriteWorkbook writes the saved charts as an xlsx workbook, one sheet per chart.
// An empty workbook fails with model.ErrEmptyResult.
func (s *Service) WriteWorkbook(ctx context.Context, id string, w io.Writer) error {
	sess, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if len(sess.Workbook) == 0 {
		return model.NewKind("service.WriteWorkbook", model.ErrEmptyResult, "no charts saved to the workbook")
	}
	if err := workbook.WriteCharts(w, sess.Workbook); err != nil {
		metrics.RecordErrorByComponent("service", "workbook_write")
		return fmt.Errorf("write workbook: %w", err)
	}
	metrics.RecordExport()
	s.logger.Info(ctx, "workbook downloaded", logger.String("session_id", id), logger.Int("entries", len(sess.Workbook)))
	return nil
}

// checkMajors rejects major filters the dataset does not offer.
func checkMajors(engine *analytics.Engine, majors []string) error {
	if engine == nil || len(majors) == 0 {
		return nil
	}
	offered := map[string]struct{}{}
	for _, m := range engine.Dataset().Majors {
		offered[m] = struct{}{}
	}
	for _, m := range majors {
		if _, ok := offered[m]; !ok {
			return model.NewKind("service.UpdateSettings", model.ErrLookup, "major %q is not offered", m)
		}
	}
	return nil
}
