// Package history aggregates the diagnosis record list: filtered views,
// summary statistics, trends, insights, chart series and exports.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/VanitasCaesar1/intake/kvstore"
	"github.com/VanitasCaesar1/intake/metrics"
	"github.com/VanitasCaesar1/intake/models"
	"github.com/VanitasCaesar1/intake/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxTrackedIDs = 10000

// Archiver receives a copy of every export.
type Archiver interface {
	Archive(ctx context.Context, name, contentType string, data []byte) error
}

type Service struct {
	store    kvstore.Store
	logger   *zap.Logger
	ids      *utils.IDGenerator
	loc      *time.Location
	archiver Archiver
	now      func() time.Time

	// mu serializes every load-modify-save cycle against the store.
	mu sync.Mutex
}

type Option func(*Service)

func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store kvstore.Store, logger *zap.Logger, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		ids:    utils.NewIDGenerator(),
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View is an immutable snapshot of the history and its filtered subset.
type View struct {
	Filter   models.FilterState
	history  []models.DiagnosisRecord
	filtered []models.DiagnosisRecord
	now      time.Time
}

// Records returns the filtered records.
func (v *View) Records() []models.DiagnosisRecord { return v.filtered }

// History returns every record regardless of the filter.
func (v *View) History() []models.DiagnosisRecord { return v.history }

// Active is the filtered set when it is non-empty, otherwise the full history.
func (v *View) Active() []models.DiagnosisRecord {
	if len(v.filtered) > 0 {
		return v.filtered
	}
	return v.history
}

func (v *View) Summary() Summary { return Summarize(v.Active(), v.now) }
func (v *View) Trends() Trends { return ComputeTrends(v.Active(), v.now) }
func (v *View) Chart() ChartSeries { return BuildChart(v.Active(), v.now.Location()) }
func (v *View) Insights() Insights { return ComputeInsights(v.history, v.now) }
func (v *View) Today() TodaySummary { return SummarizeToday(v.history, v.now) }
func (v *View) Export(format string) (*ExportFile, error) {
	return Export(v.Active(), format, v.now)
}

// Query loads the history and applies f.
func (s *Service) Query(ctx context.Context, f models.FilterState) (*View, error) {
	start := time.Now()
	defer func() {
		metrics.HistoryQueryDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().In(s.loc)
	filtered, err := Filter(history, f, now)
	if err != nil {
		return nil, err
	}
	return &View{Filter: f, history: history, filtered: filtered, now: now}, nil
}

// Append adds a record at the front of the history and persists it.
func (s *Service) Append(ctx context.Context, text string, confidence *float64) (models.DiagnosisRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.DiagnosisRecord{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx)
	if err != nil {
		return models.DiagnosisRecord{}, err
	}

	now := s.now()
	id, err := s.ids.GenerateRecordID(now)
	if err != nil {
		return models.DiagnosisRecord{}, fmt.Errorf("failed to generate record id: %w", err)
	}
	s.ids.CleanupOldIDs(maxTrackedIDs)

	record := models.DiagnosisRecord{
		ID:         id,
		Text:       text,
		Time:       now.In(s.loc).Format("15:04:05"),
		Timestamp:  now.UTC().Truncate(time.Millisecond),
		Confidence: confidence,
	}

	history = append([]models.DiagnosisRecord{record}, history...)
	if err := s.save(ctx, history); err != nil {
		return models.DiagnosisRecord{}, err
	}

	metrics.HistoryMutations.WithLabelValues("append").Inc()
	s.logger.Info("history record added",
		zap.String("id", record.ID),
		zap.String("text", record.Text))
	return record, nil
}

// FlagError marks the record as a misrecognition. Flagging twice is a no-op.
func (s *Service) FlagError(ctx context.Context, id string) (models.DiagnosisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx)
	if err != nil {
		return models.DiagnosisRecord{}, err
	}

	i := indexOf(history, id)
	if i < 0 {
		return models.DiagnosisRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if history[i].IsError {
		return history[i], nil
	}

	history[i].IsError = true
	if err := s.save(ctx, history); err != nil {
		return models.DiagnosisRecord{}, err
	}

	metrics.HistoryMutations.WithLabelValues("flag").Inc()
	s.logger.Info("history record flagged as error", zap.String("id", id))
	return history[i], nil
}

// DeleteRecord removes the record with the given id.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx)
	if err != nil {
		return err
	}

	i := indexOf(history, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	history = append(history[:i], history[i+1:]...)
	if err := s.save(ctx, history); err != nil {
		return err
	}

	metrics.HistoryMutations.WithLabelValues("delete").Inc()
	s.logger.Info("history record deleted", zap.String("id", id))
	return nil
}

// ClearAll removes the whole history from the store.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return ErrAlreadyEmpty
	}

	if err := s.store.Delete(ctx, kvstore.KeyDiagnosisHistory); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	metrics.HistoryMutations.WithLabelValues("clear").Inc()
	metrics.HistorySize.Set(0)
	s.logger.Info("history cleared", zap.Int("removed", len(history)))
	return nil
}

// Export serializes the active data set of f and copies it to the archive
// when one is configured. Archive failures do not fail the export.
func (s *Service) Export(ctx context.Context, f models.FilterState, format string) (*ExportFile, error) {
	view, err := s.Query(ctx, f)
	if err != nil {
		return nil, err
	}
	file, err := view.Export(format)
	if err != nil {
		return nil, err
	}

	metrics.Exports.WithLabelValues(format).Inc()
	s.logger.Info("history exported",
		zap.String("format", format),
		zap.Int("records", file.Count),
		zap.String("filename", file.Filename))

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, file.Filename, file.ContentType, file.Data); err != nil {
			metrics.ArchiveFailures.Inc()
			s.logger.Warn("failed to archive export",
				zap.String("filename", file.Filename),
				zap.Error(err))
		}
	}
	return file, nil
}

// DistinctTexts returns each record text once, in history order.
func (s *Service) DistinctTexts(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(history))
	texts := make([]string, 0, len(history))
	for _, r := range history {
		if seen[r.Text] {
			continue
		}
		seen[r.Text] = true
		texts = append(texts, r.Text)
	}
	return texts, nil
}

// load reads and normalizes the stored history. Data that is not a JSON array
// is logged and treated as an empty history. Must be called with mu held.
func (s *Service) load(ctx context.Context) ([]models.DiagnosisRecord, error) {
	var raw []json.RawMessage
	err := kvstore.GetJSON(ctx, s.store, kvstore.KeyDiagnosisHistory, &raw)
	switch {
	case err == nil:
	case errors.Is(err, kvstore.ErrNotFound):
		return nil, nil
	case kvstore.IsDecodeError(err):
		s.logger.Warn("stored history is unreadable, starting empty", zap.Error(err))
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history, coerced := decodeRecords(raw, s.logger)
	if migrated := coerced + normalize(history, s.now()); migrated > 0 {
		s.logger.Info("migrated legacy history records", zap.Int("count", migrated))
		if err := s.save(ctx, history); err != nil {
			s.logger.Warn("failed to persist migrated history", zap.Error(err))
		}
	}

	metrics.HistorySize.Set(float64(len(history)))
	return history, nil
}

func (s *Service) save(ctx context.Context, history []models.DiagnosisRecord) error {
	if history == nil {
		history = []models.DiagnosisRecord{}
	}
	if err := kvstore.SetJSON(ctx, s.store, kvstore.KeyDiagnosisHistory, history); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	metrics.HistorySize.Set(float64(len(history)))
	return nil
}

// normalize backfills ids and timestamps of legacy records in place and
// returns how many records changed.
func normalize(history []models.DiagnosisRecord, now time.Time) int {
	changed := 0
	for i := range history {
		r := &history[i]
		touched := false
		if r.ID == "" {
			r.ID = utils.LegacyID(i, now)
			touched = true
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = now.UTC().Truncate(time.Millisecond)
			touched = true
		}
		if touched {
			changed++
		}
	}
	return changed
}

func indexOf(history []models.DiagnosisRecord, id string) int {
	for i, r := range history {
		if r.ID == id {
			return i
		}
	}
	return -1
}
