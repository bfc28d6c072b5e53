package diagnosis

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

const (
	RecommendPending = "分析中..."
	RecommendGeneral = "暂无明确指向，建议咨询全科"
)

type department struct {
	name     string
	keywords []string
}

// Order matters: on equal scores the earlier department wins.
var departmentTable = []department{
	{name: "神经内科", keywords: []string{"头", "脖子"}},
	{name: "心血管内科", keywords: []string{"心脏"}},
	{name: "消化内科", keywords: []string{"恶心"}},
	{name: "呼吸内科", keywords: []string{"发烧", "感冒"}},
	{name: "骨科", keywords: []string{"手"}},
}

// Recommender maps symptom answers to a department. A symptom scores one
// point for each department that lists it as a keyword; the whole answer has
// to equal the keyword, so free text such as 右手腕关节 scores nothing.
type Recommender struct {
	ac          ahocorasick.AhoCorasick
	patternDept []int
}

func NewRecommender() *Recommender {
	var patterns []string
	var patternDept []int
	for i, d := range departmentTable {
		for _, k := range d.keywords {
			patterns = append(patterns, k)
			patternDept = append(patternDept, i)
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		// overlapping iteration needs standard semantics
		MatchKind: ahocorasick.StandardMatch,
	})

	return &Recommender{
		ac:          builder.Build(patterns),
		patternDept: patternDept,
	}
}

// Recommend returns the highest scoring department for symptoms.
func (r *Recommender) Recommend(symptoms []string) string {
	scores := make([]int, len(departmentTable))
	for _, s := range symptoms {
		hit := make([]bool, len(departmentTable))
		iter := r.ac.IterOverlapping(s)
		for m := iter.Next(); m != nil; m = iter.Next() {
			if m.Start() != 0 || m.End() != len(s) {
				continue
			}
			dept := r.patternDept[m.Pattern()]
			if !hit[dept] {
				hit[dept] = true
				scores[dept]++
			}
		}
	}

	best, bestScore := -1, 0
	for i, score := range scores {
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	switch {
	case best >= 0:
		return departmentTable[best].name
	case len(symptoms) > 0:
		return RecommendGeneral
	default:
		return RecommendPending
	}
}
