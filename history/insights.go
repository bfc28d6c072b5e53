package history

import (
	"fmt"
	"strconv"
	"time"

	"github.com/VanitasCaesar1/intake/models"
)

const (
	titleActiveTime = "活跃时间段"
	titleProgress   = "进步显著"
	titleSuggestion = "学习建议"
)

type ProgressDirection string

const (
	ProgressUp     ProgressDirection = "up"
	ProgressDown   ProgressDirection = "down"
	ProgressStable ProgressDirection = "stable"
)

// Insight is one narrative card. The numeric fields are set only for the
// insights that have them.
type Insight struct {
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	HasData   bool              `json:"hasData"`
	Hour      *int              `json:"hour,omitempty"`
	Direction ProgressDirection `json:"direction,omitempty"`
	Delta     float64           `json:"delta,omitempty"`
	Change    string            `json:"change,omitempty"`
}

type Insights struct {
	ActiveTime Insight `json:"activeTime"`
	Progress   Insight `json:"progress"`
	Suggestion Insight `json:"suggestion"`
}

// ComputeInsights derives the three insight cards from the full history.
func ComputeInsights(history []models.DiagnosisRecord, now time.Time) Insights {
	if len(history) == 0 {
		return Insights{
			ActiveTime: Insight{Title: titleActiveTime, Content: "暂无使用数据，开始使用后将显示您的活跃时间段分析。"},
			Progress:   Insight{Title: titleProgress, Content: "暂无使用数据，开始使用后将显示您的进步情况分析。"},
			Suggestion: Insight{Title: titleSuggestion, Content: "暂无使用数据，开始使用后将根据您的识别情况提供学习建议。"},
		}
	}

	return Insights{
		ActiveTime: activeTimeInsight(history, now.Location()),
		Progress:   progressInsight(history, now),
		Suggestion: suggestionInsight(history),
	}
}

func activeTimeInsight(history []models.DiagnosisRecord, loc *time.Location) Insight {
	var hours [24]int
	days := make(map[string]struct{})
	for _, r := range history {
		local := r.Timestamp.In(loc)
		hours[local.Hour()]++
		days[local.Format(dateLayout)] = struct{}{}
	}

	// Ties go to the earliest hour.
	hour := 0
	for h := 1; h < 24; h++ {
		if hours[h] > hours[hour] {
			hour = h
		}
	}

	avg := float64(hours[hour]) / float64(max(1, len(days)))
	return Insight{
		Title: titleActiveTime,
		Content: fmt.Sprintf("您最活跃的时间是 %02d:00-%02d:00，平均每天在此时间段进行%s次识别。建议保持这一良好的使用习惯。",
			hour, hour+1, strconv.FormatFloat(round1(avg), 'f', 1, 64)),
		HasData: true,
		Hour:    &hour,
	}
}

func progressInsight(history []models.DiagnosisRecord, now time.Time) Insight {
	thisMonthStart := startOfMonth(now)
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)
	lastMonthEnd := thisMonthStart.Add(-time.Millisecond)

	var thisMonth, lastMonth []models.DiagnosisRecord
	for _, r := range history {
		switch {
		case onOrAfter(r.Timestamp, thisMonthStart):
			thisMonth = append(thisMonth, r)
		case within(r.Timestamp, lastMonthStart, lastMonthEnd):
			lastMonth = append(lastMonth, r)
		}
	}

	thisAcc := round1(accuracy(thisMonth))
	lastAcc := round1(accuracy(lastMonth))
	insight := Insight{Title: titleProgress}

	switch {
	case len(thisMonth) > 0 && len(lastMonth) > 0:
		delta := round1(thisAcc - lastAcc)
		insight.HasData = true
		insight.Delta = delta
		switch {
		case delta > 0:
			insight.Direction = ProgressUp
			insight.Change = fmt.Sprintf("%+.1f%%", delta)
			insight.Content = fmt.Sprintf("与上月相比，您的识别准确率提升了 %.1f%%，从%.1f%%提高到%.1f%%，进步非常明显！",
				delta, lastAcc, thisAcc)
		case delta < 0:
			insight.Direction = ProgressDown
			insight.Change = fmt.Sprintf("%+.1f%%", delta)
			insight.Content = fmt.Sprintf("与上月相比，您的识别准确率下降了 %.1f%%，建议多练习以提高识别准确率。", -delta)
		default:
			insight.Direction = ProgressStable
			insight.Change = "0.0%"
			insight.Content = fmt.Sprintf("与上月相比，您的识别准确率保持稳定，为 %.1f%%，继续保持！", thisAcc)
		}
	case len(thisMonth) > 0:
		insight.HasData = true
		insight.Content = fmt.Sprintf("本月识别准确率为 %.1f%%，继续努力提升识别准确率！", thisAcc)
	case len(lastMonth) > 0:
		insight.HasData = true
		insight.Content = fmt.Sprintf("上月识别准确率为 %.1f%%，本月暂无识别记录，继续加油！", lastAcc)
	default:
		insight.Content = noDataText
	}
	return insight
}

func suggestionInsight(history []models.DiagnosisRecord) Insight {
	symptom, count := mostFrequentCount(history, func(r models.DiagnosisRecord) bool { return r.IsError })
	if count > 0 {
		return Insight{
			Title:   titleSuggestion,
			Content: fmt.Sprintf("您对\"%s\"的识别错误次数较多（%d次），建议重点练习相关手语动作，提高识别准确率。", symptom, count),
			HasData: true,
		}
	}
	return Insight{
		Title:   titleSuggestion,
		Content: "您已掌握多种手语识别，当前识别准确率良好。建议继续练习以保持和提高识别水平。",
		HasData: true,
	}
}
