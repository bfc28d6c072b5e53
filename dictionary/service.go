package dictionary

import (
	"context"
	"fmt"
	"sync"

	"github.com/VanitasCaesar1/intake/kvstore"
	"github.com/VanitasCaesar1/intake/metrics"
	"github.com/VanitasCaesar1/intake/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// WordView is a word as shown on the dictionary page.
type WordView struct {
	Word
	CategoryName string `json:"categoryName"`
	Learned      bool   `json:"learned"`
	Mastered     bool   `json:"mastered"`
	Status       string `json:"status"`
}

func (p Progress) view(w Word) WordView {
	return WordView{
		Word:         w,
		CategoryName: CategoryName(w.Category),
		Learned:      p.IsLearned(w.ID),
		Mastered:     p.IsMastered(w.ID),
		Status:       p.Status(w.ID),
	}
}

func (p Progress) views(words []Word) []WordView {
	out := make([]WordView, len(words))
	for i, w := range words {
		out[i] = p.view(w)
	}
	return out
}

type Service struct {
	store  kvstore.Store
	logger *zap.Logger
	mu     sync.Mutex
}

func NewService(store kvstore.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Search returns one page of the catalog filtered and sorted by q.
func (s *Service) Search(ctx context.Context, q Query) (Page, error) {
	words := search(Words(), q.Search, q.Category)
	sortWords(words, q.Sort)

	matched := len(words)
	pageWords, totalPages, err := paginate(words, q.Page)
	if err != nil {
		return Page{}, err
	}

	p := s.load(ctx)
	page := q.Page
	if page == 0 {
		page = 1
	}
	return Page{
		Words:      p.views(pageWords),
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages,
		Matched:    matched,
	}, nil
}

func (s *Service) Word(ctx context.Context, id int) (WordView, error) {
	w, ok := Lookup(id)
	if !ok {
		return WordView{}, fmt.Errorf("%w: %d", ErrWordNotFound, id)
	}
	return s.load(ctx).view(w), nil
}

// Overview is the progress panel of the dictionary page.
type Overview struct {
	Stats      Stats           `json:"stats"`
	Categories []CategoryCount `json:"categories"`
}

func (s *Service) Stats(ctx context.Context) Overview {
	return Overview{Stats: s.load(ctx).stats(), Categories: Categories()}
}

func (s *Service) Practice(ctx context.Context) []WordView {
	p := s.load(ctx)
	return p.views(p.practice(Words()))
}

// ToggleLearn flips the learned state of word id.
func (s *Service) ToggleLearn(ctx context.Context, id int) (WordView, error) {
	return s.mutate(ctx, id, func(p *Progress) string {
		if p.toggleLearn(id) {
			return "learn"
		}
		return "unlearn"
	})
}

// ToggleMastered flips the mastered state of word id.
func (s *Service) ToggleMastered(ctx context.Context, id int) (WordView, error) {
	return s.mutate(ctx, id, func(p *Progress) string {
		if p.toggleMastered(id) {
			return "master"
		}
		return "unmaster"
	})
}

// Reset forgets all progress.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, kvstore.KeyLearningProgress); err != nil {
		return fmt.Errorf("failed to reset learning progress: %w", err)
	}
	metrics.DictionaryProgress.WithLabelValues("reset").Inc()
	s.logger.Info("learning progress reset")
	return nil
}

func (s *Service) mutate(ctx context.Context, id int, fn func(*Progress) string) (WordView, error) {
	w, ok := Lookup(id)
	if !ok {
		return WordView{}, fmt.Errorf("%w: %d", ErrWordNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(ctx)
	action := fn(&p)
	if err := kvstore.SetJSON(ctx, s.store, kvstore.KeyLearningProgress, p.LearningProgress); err != nil {
		return WordView{}, fmt.Errorf("failed to save learning progress: %w", err)
	}

	metrics.DictionaryProgress.WithLabelValues(action).Inc()
	s.logger.Info("learning progress updated",
		zap.Int("word_id", id),
		zap.String("word", w.Chinese),
		zap.String("action", action),
	)
	return p.view(w), nil
}

// load never fails: unreadable progress starts over empty.
func (s *Service) load(ctx context.Context) Progress {
	var lp models.LearningProgress
	err := kvstore.GetJSON(ctx, s.store, kvstore.KeyLearningProgress, &lp)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		s.logger.Warn("failed to load learning progress", zap.Error(err))
		lp = models.LearningProgress{}
	}
	return newProgress(lp)
}
