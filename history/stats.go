package history

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/VanitasCaesar1/intake/models"
)

const noneSymptom = "无"

type Summary struct {
	TotalCount        int     `json:"totalCount"`
	TodayCount        int     `json:"todayCount"`
	Accuracy          float64 `json:"accuracy"`
	MostCommonSymptom string  `json:"mostCommonSymptom"`
}

// Summarize computes the four stat cards of the history page over data.
func Summarize(data []models.DiagnosisRecord, now time.Time) Summary {
	today := startOfDay(now)
	todayCount := 0
	for _, r := range data {
		if onOrAfter(r.Timestamp, today) {
			todayCount++
		}
	}

	return Summary{
		TotalCount:        len(data),
		TodayCount:        todayCount,
		Accuracy:          round1(accuracy(data)),
		MostCommonSymptom: mostFrequent(data, func(models.DiagnosisRecord) bool { return true }),
	}
}

// accuracy is the unrounded share of records not flagged as errors, in percent.
func accuracy(data []models.DiagnosisRecord) float64 {
	if len(data) == 0 {
		return 0
	}
	return float64(correctCount(data)) * 100 / float64(len(data))
}

func correctCount(data []models.DiagnosisRecord) int {
	n := 0
	for _, r := range data {
		if !r.IsError {
			n++
		}
	}
	return n
}

// mostFrequent returns the display text occurring most often among records
// accepted by keep. Ties go to the text seen first. It returns 无 when nothing matches.
func mostFrequent(data []models.DiagnosisRecord, keep func(models.DiagnosisRecord) bool) string {
	best, _ := mostFrequentCount(data, keep)
	if best == "" {
		return noneSymptom
	}
	return best
}

func mostFrequentCount(data []models.DiagnosisRecord, keep func(models.DiagnosisRecord) bool) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, r := range data {
		if !keep(r) {
			continue
		}
		text := r.DisplayText()
		if _, ok := counts[text]; !ok {
			order = append(order, text)
		}
		counts[text]++
	}

	best, bestCount := "", 0
	for _, text := range order {
		if counts[text] > bestCount {
			best, bestCount = text, counts[text]
		}
	}
	return best, bestCount
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

type TrendStatus string

const (
	TrendNoData    TrendStatus = "no_data"
	TrendNew       TrendStatus = "new"
	TrendIncreased TrendStatus = "increased"
	TrendDecreased TrendStatus = "decreased"
	TrendNoChange  TrendStatus = "no_change"
)

const (
	classUp   = "trend-up"
	classDown = "trend-down"

	trendLabel  = "比昨天"
	noDataText  = "无数据"
	countSuffix = "次"
)

// Trend is one window-over-window indicator. Change is the signed delta in
// percent rounded to one decimal; for TrendNew it is the current value.
type Trend struct {
	Status TrendStatus `json:"status"`
	Change float64     `json:"change"`
	Signed string      `json:"signed,omitempty"`
	Text   string      `json:"text"`
	Class  string      `json:"class"`
}

// CalculatePercentageChange compares current against previous. With
// isPercentage the values are rates and "new" is reported with a % suffix.
func CalculatePercentageChange(current, previous float64, label string, isPercentage bool) Trend {
	if previous == 0 {
		if current == 0 {
			return Trend{Status: TrendNoData, Text: noDataText}
		}
		value := strconv.FormatFloat(current, 'f', -1, 64)
		suffix := countSuffix
		if isPercentage {
			value = strconv.FormatFloat(round1(current), 'f', 1, 64)
			suffix = "%"
		}
		return Trend{
			Status: TrendNew,
			Change: current,
			Signed: "+" + value + suffix,
			Text:   fmt.Sprintf("%s新增 %s%s", label, value, suffix),
			Class:  classUp,
		}
	}

	change := round1((current - previous) / previous * 100)
	abs := strconv.FormatFloat(math.Abs(change), 'f', 1, 64)
	switch {
	case change > 0:
		return Trend{
			Status: TrendIncreased,
			Change: change,
			Signed: fmt.Sprintf("%+.1f%%", change),
			Text:   fmt.Sprintf("%s增加 %s%%", label, abs),
			Class:  classUp,
		}
	case change < 0:
		return Trend{
			Status: TrendDecreased,
			Change: change,
			Signed: fmt.Sprintf("%+.1f%%", change),
			Text:   fmt.Sprintf("%s减少 %s%%", label, abs),
			Class:  classDown,
		}
	default:
		return Trend{
			Status: TrendNoChange,
			Signed: "0.0%",
			Text:   label + "无变化",
		}
	}
}

type Trends struct {
	Total    Trend `json:"total"`
	Today    Trend `json:"today"`
	Accuracy Trend `json:"accuracy"`
	Symptom  Trend `json:"symptom"`
}

// ComputeTrends compares this week and today against yesterday.
func ComputeTrends(data []models.DiagnosisRecord, now time.Time) Trends {
	weekStart := startOfWeek(now)
	todayStart := startOfDay(now)
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	yesterdayEnd := todayStart.Add(-time.Millisecond)

	var thisWeek, today, yesterday []models.DiagnosisRecord
	for _, r := range data {
		if onOrAfter(r.Timestamp, weekStart) {
			thisWeek = append(thisWeek, r)
		}
		if onOrAfter(r.Timestamp, todayStart) {
			today = append(today, r)
		}
		if within(r.Timestamp, yesterdayStart, yesterdayEnd) {
			yesterday = append(yesterday, r)
		}
	}

	return Trends{
		Total:    CalculatePercentageChange(float64(len(thisWeek)), float64(len(yesterday)), trendLabel, false),
		Today:    CalculatePercentageChange(float64(len(today)), float64(len(yesterday)), trendLabel, false),
		Accuracy: CalculatePercentageChange(accuracy(today), accuracy(yesterday), trendLabel, true),
		Symptom:  Trend{Status: TrendNoData, Text: noDataText},
	}
}

type ChartSeries struct {
	Labels        []string `json:"labels"`
	Counts        []int    `json:"counts"`
	AccuracyRates []int    `json:"accuracyRates"`
}

// BuildChart groups data by local calendar date in ascending order.
func BuildChart(data []models.DiagnosisRecord, loc *time.Location) ChartSeries {
	type bucket struct {
		day            time.Time
		total, correct int
	}
	groups := make(map[string]*bucket)
	for _, r := range data {
		local := r.Timestamp.In(loc)
		key := local.Format(dateLayout)
		b, ok := groups[key]
		if !ok {
			b = &bucket{day: local}
			groups[key] = b
		}
		b.total++
		if !r.IsError {
			b.correct++
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := ChartSeries{
		Labels:        make([]string, 0, len(keys)),
		Counts:        make([]int, 0, len(keys)),
		AccuracyRates: make([]int, 0, len(keys)),
	}
	for _, k := range keys {
		b := groups[k]
		rate := 0
		if b.total > 0 {
			rate = roundInt(float64(b.correct) * 100 / float64(b.total))
		}
		series.Labels = append(series.Labels, b.day.Format("01-02"))
		series.Counts = append(series.Counts, b.total)
		series.AccuracyRates = append(series.AccuracyRates, rate)
	}
	return series
}

// TodaySummary feeds the diagnosis page header and the home page gauge.
type TodaySummary struct {
	TodayCount       int `json:"todayCount"`
	TodaySuccessRate int `json:"todaySuccessRate"`
	TotalCount       int `json:"totalCount"`
	OverallAccuracy  int `json:"overallAccuracy"`
}

func SummarizeToday(history []models.DiagnosisRecord, now time.Time) TodaySummary {
	todayStart := startOfDay(now)
	var today []models.DiagnosisRecord
	for _, r := range history {
		if onOrAfter(r.Timestamp, todayStart) {
			today = append(today, r)
		}
	}
	return TodaySummary{
		TodayCount:       len(today),
		TodaySuccessRate: roundInt(accuracy(today)),
		TotalCount:       len(history),
		OverallAccuracy:  roundInt(accuracy(history)),
	}
}
