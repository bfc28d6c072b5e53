package dictionary

import (
	"math"
	"slices"

	"github.com/VanitasCaesar1/intake/models"
)

const (
	StatusMastered = "已掌握"
	StatusLearning = "学习中"
	StatusNew      = "未学习"
)

// Progress wraps the persisted learned and mastered id lists. Every mastered
// word is also learned.
type Progress struct {
	models.LearningProgress
}

func newProgress(p models.LearningProgress) Progress {
	if p.Learned == nil {
		p.Learned = []int{}
	}
	if p.Mastered == nil {
		p.Mastered = []int{}
	}
	return Progress{p}
}

func (p Progress) IsLearned(id int) bool  { return slices.Contains(p.Learned, id) }
func (p Progress) IsMastered(id int) bool { return slices.Contains(p.Mastered, id) }

func (p Progress) Status(id int) string {
	switch {
	case p.IsMastered(id):
		return StatusMastered
	case p.IsLearned(id):
		return StatusLearning
	default:
		return StatusNew
	}
}

// toggleLearn flips the learned flag and reports the new state. Un-learning
// also drops the mastered flag.
func (p *Progress) toggleLearn(id int) bool {
	if i := slices.Index(p.Learned, id); i >= 0 {
		p.Learned = slices.Delete(p.Learned, i, i+1)
		if j := slices.Index(p.Mastered, id); j >= 0 {
			p.Mastered = slices.Delete(p.Mastered, j, j+1)
		}
		return false
	}
	p.Learned = append(p.Learned, id)
	return true
}

// toggleMastered flips the mastered flag and reports the new state. Mastering
// marks the word learned; un-mastering keeps it learned.
func (p *Progress) toggleMastered(id int) bool {
	if !p.IsLearned(id) {
		p.Learned = append(p.Learned, id)
	}
	if i := slices.Index(p.Mastered, id); i >= 0 {
		p.Mastered = slices.Delete(p.Mastered, i, i+1)
		return false
	}
	p.Mastered = append(p.Mastered, id)
	return true
}

// Stats summarizes progress over the catalog.
type Stats struct {
	Total     int `json:"total"`
	Learned   int `json:"learned"`
	Remaining int `json:"remaining"`
	Mastered  int `json:"mastered"`
	Percent   int `json:"percent"`
}

func (p Progress) stats() Stats {
	total := len(catalog)
	learned := len(p.Learned)
	return Stats{
		Total:     total,
		Learned:   learned,
		Remaining: total - learned,
		Mastered:  len(p.Mastered),
		Percent:   int(math.Round(float64(learned) / float64(total) * 100)),
	}
}

// practice picks up to two new words and two words still being learned. When
// that yields fewer than four, the first four catalog words are used.
func (p Progress) practice(words []Word) []Word {
	var unlearned, learning []Word
	for _, w := range words {
		switch {
		case !p.IsLearned(w.ID):
			unlearned = append(unlearned, w)
		case !p.IsMastered(w.ID):
			learning = append(learning, w)
		}
	}
	picked := make([]Word, 0, 4)
	picked = append(picked, unlearned[:min(2, len(unlearned))]...)
	picked = append(picked, learning[:min(2, len(learning))]...)
	if len(picked) == 4 {
		return picked
	}
	return words[:min(4, len(words))]
}
