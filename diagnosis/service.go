// Package diagnosis drives the four-question guided intake, merges it with the
// doctor's notes, recommends a department and renders the intake card.
package diagnosis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VanitasCaesar1/intake/kvstore"
	"github.com/VanitasCaesar1/intake/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// sessions idle longer than this are dropped when a new one is created
const sessionTTL = 12 * time.Hour

// SymptomSource supplies the recognized texts of the record history.
type SymptomSource interface {
	DistinctTexts(ctx context.Context) ([]string, error)
}

type Service struct {
	store       kvstore.Store
	logger      *zap.Logger
	recommender *Recommender
	symptoms    SymptomSource
	fontPaths   []string
	loc         *time.Location
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Flow
}

type Config struct {
	Store    kvstore.Store
	Logger   *zap.Logger
	Symptoms SymptomSource
	Location *time.Location
	// FontPath is tried before DefaultFontPaths when rendering PDF cards.
	FontPath string
	Now      func() time.Time
}

func NewService(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	fonts := append([]string{cfg.FontPath}, DefaultFontPaths...)
	return &Service{
		store:       cfg.Store,
		logger:      cfg.Logger,
		recommender: NewRecommender(),
		symptoms:    cfg.Symptoms,
		fontPaths:   fonts,
		loc:         loc,
		now:         now,
		sessions:    make(map[string]*Flow),
	}
}

// CreateSession starts a new intake at question 1.
func (s *Service) CreateSession(ctx context.Context) (State, error) {
	doctor, err := s.DoctorInfo(ctx)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, f := range s.sessions {
		if now.Sub(f.UpdatedAt) > sessionTTL {
			delete(s.sessions, id)
		}
	}

	f := NewFlow(uuid.NewString(), now)
	s.sessions[f.ID] = f
	s.logger.Info("diagnosis session created", zap.String("session_id", f.ID))
	return s.stateLocked(f, doctor), nil
}

func (s *Service) Session(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, func(*Flow, time.Time) error { return nil })
}

func (s *Service) SelectOption(ctx context.Context, id, option string) (State, error) {
	return s.update(ctx, id, func(f *Flow, now time.Time) error { return f.SelectOption(option, now) })
}

func (s *Service) SubmitCustom(ctx context.Context, id, text string) (State, error) {
	return s.update(ctx, id, func(f *Flow, now time.Time) error { return f.SubmitCustom(text, now) })
}

func (s *Service) Next(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, func(f *Flow, now time.Time) error { return f.Next(now) })
}

func (s *Service) Prev(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, func(f *Flow, now time.Time) error { return f.Prev(now) })
}

// Card builds the intake card. It fails with ErrIncompleteSession until
// every question is answered and the doctor fields are filled.
func (s *Service) Card(ctx context.Context, id string) (Card, error) {
	doctor, err := s.DoctorInfo(ctx)
	if err != nil {
		return Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.sessions[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if !f.Complete(doctor) {
		return Card{}, ErrIncompleteSession
	}
	return newCard(f, doctor, s.recommender.Recommend(f.Symptoms()), s.now().In(s.loc)), nil
}

// RenderPDF renders c with the configured fonts.
func (s *Service) RenderPDF(c Card) ([]byte, error) {
	return c.PDF(s.fontPaths)
}

// DoctorInfo returns the persisted doctor fields. Unreadable data yields
// empty fields.
func (s *Service) DoctorInfo(ctx context.Context) (models.DoctorInfo, error) {
	var info models.DoctorInfo
	err := kvstore.GetJSON(ctx, s.store, kvstore.KeyDoctorInfo, &info)
	switch {
	case err == nil:
		return info, nil
	case errors.Is(err, kvstore.ErrNotFound):
		return models.DoctorInfo{}, nil
	case kvstore.IsDecodeError(err):
		s.logger.Warn("stored doctor info is unreadable", zap.Error(err))
		return models.DoctorInfo{}, nil
	default:
		return models.DoctorInfo{}, fmt.Errorf("failed to load doctor info: %w", err)
	}
}

func (s *Service) SaveDoctorInfo(ctx context.Context, info models.DoctorInfo) error {
	if err := kvstore.SetJSON(ctx, s.store, kvstore.KeyDoctorInfo, info); err != nil {
		return fmt.Errorf("failed to save doctor info: %w", err)
	}
	return nil
}

// Recommend scores an arbitrary symptom list.
func (s *Service) Recommend(symptoms []string) string {
	return s.recommender.Recommend(symptoms)
}

// HistoryRecommendation recommends a department from the distinct texts of
// the whole record history.
func (s *Service) HistoryRecommendation(ctx context.Context) (string, []string, error) {
	if s.symptoms == nil {
		return RecommendPending, nil, nil
	}
	texts, err := s.symptoms.DistinctTexts(ctx)
	if err != nil {
		return "", nil, err
	}
	symptoms := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			symptoms = append(symptoms, t)
		}
	}
	return s.recommender.Recommend(symptoms), symptoms, nil
}

func (s *Service) update(ctx context.Context, id string, fn func(*Flow, time.Time) error) (State, error) {
	doctor, err := s.DoctorInfo(ctx)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.sessions[id]
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err := fn(f, s.now()); err != nil {
		return State{}, err
	}
	return s.stateLocked(f, doctor), nil
}

func (s *Service) stateLocked(f *Flow, doctor models.DoctorInfo) State {
	return f.state(doctor, s.recommender.Recommend(f.Symptoms()))
}

// Now is the service clock in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}
