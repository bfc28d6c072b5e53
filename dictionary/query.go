package dictionary

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const PageSize = 9

const (
	SortNone         = ""
	SortAlphabetical = "alphabetical"
	SortDifficulty   = "difficulty"
)

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrWordNotFound   = errors.New("word not found")
)

// Query selects a page of the catalog.
type Query struct {
	Search   string `json:"search" query:"search" validate:"max=50"`
	Category string `json:"category" query:"category" validate:"omitempty,oneof=all symptom body time number action treatment emergency medication"`
	Sort     string `json:"sort" query:"sort" validate:"omitempty,oneof=alphabetical difficulty"`
	Page     int    `json:"page" query:"page" validate:"omitempty,min=1"`
}

// Page is one page of matching words.
type Page struct {
	Words      []WordView `json:"words"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
	Matched    int        `json:"matched"`
}

func match(w Word, q string) bool {
	return strings.Contains(strings.ToLower(w.Chinese), q) ||
		strings.Contains(strings.ToLower(w.Pinyin), q) ||
		strings.Contains(w.Description, q)
}

// search applies the text and category filters in catalog order.
func search(words []Word, query, category string) []Word {
	q := strings.ToLower(query)
	out := make([]Word, 0, len(words))
	for _, w := range words {
		if q != "" && !match(w, q) {
			continue
		}
		if category != "" && category != CategoryAll && w.Category != category {
			continue
		}
		out = append(out, w)
	}
	return out
}

func sortWords(words []Word, mode string) {
	switch mode {
	case SortAlphabetical:
		// a Collator keeps internal buffers, so one per call
		c := collate.New(language.Chinese)
		slices.SortStableFunc(words, func(a, b Word) int {
			return c.CompareString(a.Chinese, b.Chinese)
		})
	case SortDifficulty:
		slices.SortStableFunc(words, func(a, b Word) int {
			return difficultyRank(a.Difficulty) - difficultyRank(b.Difficulty)
		})
	}
}

// paginate returns page n (1-based). An empty result has a single empty page.
func paginate(words []Word, n int) ([]Word, int, error) {
	if n == 0 {
		n = 1
	}
	totalPages := (len(words) + PageSize - 1) / PageSize
	if n < 1 || n > max(totalPages, 1) {
		return nil, totalPages, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, totalPages)
	}
	start := (n - 1) * PageSize
	end := min(start+PageSize, len(words))
	return words[start:end], totalPages, nil
}
