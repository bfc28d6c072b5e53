package diagnosis

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VanitasCaesar1/intake/models"
	"github.com/pkg/errors"
	"github.com/signintech/gopdf"
)

const (
	missingValue = "未填写"
	customMark   = " (自定义)"
)

// ErrFontUnavailable is returned when no CJK TrueType font can be loaded for PDF cards.
var ErrFontUnavailable = errors.New("no font available for pdf card")

// DefaultFontPaths are tried in order after the configured font. gopdf needs
// plain .ttf files; collections (.ttc) are not supported.
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansSC-Regular.ttf",
	"/usr/share/fonts/noto-cjk/NotoSansSC-Regular.ttf",
	"/usr/share/fonts/TTF/NotoSansSC-Regular.ttf",
}

// Card is the printable intake summary. Department is shown on the page but
// is not part of the downloaded card.
type Card struct {
	Date          string
	Symptom       string
	Duration      string
	PainLevel     string
	OtherSymptoms string
	Department    string
	Doctor        models.DoctorInfo
}

func newCard(f *Flow, doctor models.DoctorInfo, department string, now time.Time) Card {
	answer := func(n int) string {
		a, ok := f.Answers[n]
		if !ok {
			return missingValue
		}
		if a.Custom {
			return a.Value + customMark
		}
		return a.Value
	}
	orMissing := func(s string) string {
		if s == "" {
			return missingValue
		}
		return s
	}
	return Card{
		Date:          now.Format("2006-01-02"),
		Symptom:       answer(1),
		Duration:      answer(2),
		PainLevel:     answer(3),
		OtherSymptoms: answer(4),
		Department:    department,
		Doctor: models.DoctorInfo{
			Diagnosis:  orMissing(doctor.Diagnosis),
			Medication: orMissing(doctor.Medication),
			Signature:  orMissing(doctor.Signature),
		},
	}
}

func (c Card) lines() []string {
	const rule = "--------------------------------------------------------"
	return []string{
		"=== 就医辅助卡 ===================================",
		"日期: " + c.Date,
		rule,
		"患者症状信息 (注：标注\"自定义\"的为患者自行描述):",
		rule,
		"主要症状: " + c.Symptom,
		"持续时间: " + c.Duration,
		"疼痛程度: " + c.PainLevel,
		"其他症状: " + c.OtherSymptoms,
		rule,
		"医生诊断信息:",
		rule,
		"医生诊断: " + c.Doctor.Diagnosis,
		"建议用药: " + c.Doctor.Medication,
		"医生签名: " + c.Doctor.Signature,
		rule,
		"患者签名: ____________________",
		"=================================================",
	}
}

// Text renders the card as plain text.
func (c Card) Text() string {
	return strings.Join(c.lines(), "\n")
}

// CardFilename is the download name for the given extension.
func CardFilename(now time.Time, ext string) string {
	return fmt.Sprintf("就医辅助卡-%d.%s", now.UnixMilli(), ext)
}

// PDF renders the card on an A4 page using the first loadable font of
// fontPaths.
func (c Card) PDF(fontPaths []string) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			fontErr = err
			continue
		}
		if err := pdf.AddTTFFont("card", path); err != nil {
			fontErr = err
			continue
		}
		fontLoaded = true
		break
	}
	if !fontLoaded {
		if fontErr == nil {
			return nil, ErrFontUnavailable
		}
		return nil, errors.Wrap(ErrFontUnavailable, fontErr.Error())
	}

	if err := pdf.SetFont("card", "", 18); err != nil {
		return nil, errors.Wrap(err, "failed to set font")
	}
	pdf.SetX(40)
	pdf.Cell(nil, "就医辅助卡")
	pdf.Br(30)

	if err := pdf.SetFont("card", "", 11); err != nil {
		return nil, errors.Wrap(err, "failed to set font")
	}
	// skip the banner line, printed as the title above
	for _, line := range c.lines()[1:] {
		wrapped, err := pdf.SplitText(line, 500)
		if err != nil {
			wrapped = []string{line}
		}
		for _, l := range wrapped {
			pdf.SetX(40)
			pdf.Cell(nil, l)
			pdf.Br(16)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to write pdf")
	}
	return buf.Bytes(), nil
}
