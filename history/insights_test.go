package history

import (
	"testing"
	"time"

	"github.com/VanitasCaesar1/intake/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthRecords(month time.Month, total, errors int) []models.DiagnosisRecord {
	out := make([]models.DiagnosisRecord, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, rec("", "头", at(month, 3, 10, i), i < errors))
	}
	return out
}

func TestComputeInsightsEmpty(t *testing.T) {
	got := ComputeInsights(nil, testNow)

	for _, in := range []Insight{got.ActiveTime, got.Progress, got.Suggestion} {
		assert.False(t, in.HasData)
		assert.Contains(t, in.Content, "暂无使用数据")
	}
	assert.Equal(t, "活跃时间段", got.ActiveTime.Title)
	assert.Equal(t, "进步显著", got.Progress.Title)
	assert.Equal(t, "学习建议", got.Suggestion.Title)
}

func TestProgressInsight(t *testing.T) {
	t.Run("improved month over month", func(t *testing.T) {
		history := append(monthRecords(time.March, 5, 1), monthRecords(time.February, 5, 2)...)

		got := ComputeInsights(history, testNow).Progress
		assert.Equal(t, ProgressUp, got.Direction)
		assert.Equal(t, 20.0, got.Delta)
		assert.Equal(t, "+20.0%", got.Change)
		assert.Contains(t, got.Content, "提升了 20.0%")
		assert.Contains(t, got.Content, "从60.0%提高到80.0%")
	})

	t.Run("declined", func(t *testing.T) {
		history := append(monthRecords(time.March, 5, 2), monthRecords(time.February, 5, 1)...)

		got := ComputeInsights(history, testNow).Progress
		assert.Equal(t, ProgressDown, got.Direction)
		assert.Equal(t, "-20.0%", got.Change)
		assert.Contains(t, got.Content, "下降了 20.0%")
	})

	t.Run("stable", func(t *testing.T) {
		history := append(monthRecords(time.March, 4, 1), monthRecords(time.February, 8, 2)...)

		got := ComputeInsights(history, testNow).Progress
		assert.Equal(t, ProgressStable, got.Direction)
		assert.Contains(t, got.Content, "保持稳定，为 75.0%")
	})

	t.Run("only this month", func(t *testing.T) {
		got := ComputeInsights(monthRecords(time.March, 4, 1), testNow).Progress
		assert.True(t, got.HasData)
		assert.Empty(t, got.Direction)
		assert.Equal(t, "本月识别准确率为 75.0%，继续努力提升识别准确率！", got.Content)
	})

	t.Run("only last month", func(t *testing.T) {
		got := ComputeInsights(monthRecords(time.February, 2, 1), testNow).Progress
		assert.True(t, got.HasData)
		assert.Contains(t, got.Content, "上月识别准确率为 50.0%")
	})

	t.Run("neither month", func(t *testing.T) {
		got := ComputeInsights(monthRecords(time.January, 2, 0), testNow).Progress
		assert.False(t, got.HasData)
		assert.Equal(t, "无数据", got.Content)
	})
}

func TestActiveTimeInsight(t *testing.T) {
	history := []models.DiagnosisRecord{
		rec("a", "头", at(time.March, 10, 14, 5), false),
		rec("b", "头", at(time.March, 11, 14, 30), false),
		rec("c", "头", at(time.March, 10, 9, 0), false),
		rec("d", "头", at(time.March, 11, 9, 59), false),
		rec("e", "头", at(time.March, 12, 23, 0), false),
	}

	got := ComputeInsights(history, testNow).ActiveTime
	require.NotNil(t, got.Hour)
	// 09 and 14 tie; the earlier hour wins. Three days have data.
	assert.Equal(t, 9, *got.Hour)
	assert.Contains(t, got.Content, "09:00-10:00")
	assert.Contains(t, got.Content, "平均每天在此时间段进行0.7次识别")

	late := ComputeInsights(history[4:], testNow).ActiveTime
	assert.Contains(t, late.Content, "23:00-24:00")
	assert.Contains(t, late.Content, "1.0次")
}

func TestSuggestionInsight(t *testing.T) {
	t.Run("most error prone", func(t *testing.T) {
		history := []models.DiagnosisRecord{
			rec("a", "手", at(time.March, 1, 8, 0), true),
			rec("b", "头", at(time.March, 1, 8, 0), true),
			rec("c", "头", at(time.March, 1, 8, 0), true),
			rec("d", "手", at(time.March, 1, 8, 0), true),
			rec("e", "心脏", at(time.March, 1, 8, 0), false),
		}
		got := ComputeInsights(history, testNow).Suggestion
		assert.Equal(t, "您对\"手\"的识别错误次数较多（2次），建议重点练习相关手语动作，提高识别准确率。", got.Content)
	})

	t.Run("no errors", func(t *testing.T) {
		got := ComputeInsights(monthRecords(time.March, 3, 0), testNow).Suggestion
		assert.Contains(t, got.Content, "您已掌握多种手语识别")
	})
}
