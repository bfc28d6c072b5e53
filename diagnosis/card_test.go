package diagnosis

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/VanitasCaesar1/intake/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardText(t *testing.T) {
	f := answeredFlow(t)
	card := newCard(f, models.DoctorInfo{Diagnosis: "偏头痛"}, "神经内科", flowNow)
	text := card.Text()

	lines := strings.Split(text, "\n")
	assert.Equal(t, "=== 就医辅助卡 ===================================", lines[0])
	assert.Contains(t, text, "日期: 2025-03-12")
	assert.Contains(t, text, "主要症状: 头\n")
	assert.Contains(t, text, "持续时间: 持续疼痛2天 (自定义)")
	assert.Contains(t, text, "疼痛程度: 4-6分 中度")
	assert.Contains(t, text, "其他症状: 恶心")
	assert.NotContains(t, text, "推荐科室")
	assert.Contains(t, text, "医生诊断: 偏头痛")
	assert.Contains(t, text, "建议用药: 未填写")
	assert.Contains(t, text, "医生签名: 未填写")
	require.Len(t, lines, 18)
	assert.Equal(t, "其他症状: 恶心", lines[8])
	assert.Equal(t, "医生诊断信息:", lines[10])
	assert.Equal(t, "患者签名: ____________________", lines[len(lines)-2])
}

func TestCardTextMissingAnswers(t *testing.T) {
	card := newCard(NewFlow("s", flowNow), models.DoctorInfo{}, RecommendPending, flowNow)
	assert.Contains(t, card.Text(), "主要症状: 未填写")
	assert.Contains(t, card.Text(), "其他症状: 未填写")
}

func TestCardFilename(t *testing.T) {
	assert.Equal(t, "就医辅助卡-1741791600000.txt", CardFilename(flowNow, "txt"))
}

func TestCardPDFWithoutFont(t *testing.T) {
	card := newCard(answeredFlow(t), models.DoctorInfo{}, "神经内科", flowNow)

	_, err := card.PDF(nil)
	assert.ErrorIs(t, err, ErrFontUnavailable)

	_, err = card.PDF([]string{"", "/nonexistent/font.ttf"})
	assert.ErrorIs(t, err, ErrFontUnavailable)
}

func TestCardPDF(t *testing.T) {
	var font string
	for _, p := range DefaultFontPaths {
		if _, err := os.Stat(p); err == nil {
			font = p
			break
		}
	}
	if font == "" {
		t.Skip("no CJK font installed")
	}

	card := newCard(answeredFlow(t), models.DoctorInfo{}, "神经内科", flowNow)
	data, err := card.PDF([]string{font})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
