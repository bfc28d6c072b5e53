package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/VanitasCaesar1/intake/diagnosis"
	"github.com/VanitasCaesar1/intake/dictionary"
	"github.com/VanitasCaesar1/intake/history"
	"github.com/VanitasCaesar1/intake/kvstore"
	"github.com/VanitasCaesar1/intake/recognition"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecognition struct {
	health recognition.Health
	result recognition.Result
	err    error
}

func (f *fakeRecognition) CheckHealth(context.Context) recognition.Health { return f.health }

func (f *fakeRecognition) Recognize(context.Context, string) (recognition.Result, error) {
	return f.result, f.err
}

func (f *fakeRecognition) GetHistory(context.Context) recognition.RemoteHistory {
	return recognition.RemoteHistory{Success: true, Data: []json.RawMessage{}, Count: 0}
}

var testNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*fiber.App, *fakeRecognition) {
	t.Helper()
	logger := zap.NewNop()
	store := kvstore.NewMemoryStore()
	clock := func() time.Time { return testNow }

	historySvc := history.NewService(store, logger, time.UTC, history.WithClock(clock))
	diagnosisSvc := diagnosis.NewService(diagnosis.Config{
		Store:    store,
		Logger:   logger,
		Symptoms: historySvc,
		Location: time.UTC,
		Now:      clock,
	})
	rec := &fakeRecognition{health: recognition.Health{Status: "ok"}}
	poller := recognition.NewPoller(rec, historySvc, time.Hour, logger)

	app := fiber.New()
	Handlers{
		History:     NewHistoryHandler(historySvc, logger),
		Diagnosis:   NewDiagnosisHandler(diagnosisSvc, logger),
		Dictionary:  NewDictionaryHandler(dictionary.NewService(store, logger), logger),
		Recognition: NewRecognitionHandler(rec, poller, historySvc, logger),
	}.Register(app)
	return app, rec
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func TestHistoryEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, "POST", "/api/history", `{"text":"头","confidence":0.8}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	id := decode(t, body)["id"].(string)

	resp, body = do(t, app, "GET", "/api/history?timeRange=today", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode(t, body)
	assert.Equal(t, float64(1), list["count"])
	assert.Equal(t, float64(100), list["summary"].(map[string]any)["accuracy"])

	resp, _ = do(t, app, "POST", "/api/history/"+id+"/error", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = do(t, app, "GET", "/api/history/stats", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), decode(t, body)["accuracy"])

	resp, body = do(t, app, "GET", "/api/history/export?format=csv", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=UTF-8''")
	assert.Contains(t, string(body), "识别错误")

	resp, _ = do(t, app, "GET", "/api/history/export?format=xml", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "DELETE", "/api/history/"+id, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = do(t, app, "DELETE", "/api/history/"+id, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, "DELETE", "/api/history", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHistoryValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, "GET", "/api/history?timeRange=decade", "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeValidation, decode(t, body)["code"])

	resp, _ = do(t, app, "GET", "/api/history?startDate=2025/03/01&endDate=2025-03-02", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/api/history", `{"text":""}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/api/history", `{"text":"头","confidence":1.5}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "GET", "/api/history/export", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "nothing to export")
}

func TestDiagnosisEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, "POST", "/api/diagnosis/sessions", "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := decode(t, body)["id"].(string)
	base := "/api/diagnosis/sessions/" + id

	resp, _ = do(t, app, "POST", base+"/next", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = do(t, app, "POST", base+"/answer", `{"option":"膝盖"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	answers := []string{
		`{"option":"手"}`, `{"option":"几天"}`, `{"option":"1-3分 轻微"}`,
	}
	for _, a := range answers {
		resp, body = do(t, app, "POST", base+"/answer", a)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
		resp, _ = do(t, app, "POST", base+"/next", "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, body = do(t, app, "POST", base+"/custom", `{"text":"手腕肿胀"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "骨科", decode(t, body)["department"])

	resp, _ = do(t, app, "GET", base+"/card", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = do(t, app, "PUT", "/api/diagnosis/doctor", `{"diagnosis":"扭伤","medication":"冰敷","signature":"张医生"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = do(t, app, "GET", base+"/card", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Contains(t, string(body), "其他症状: 手腕肿胀 (自定义)")
	assert.Contains(t, string(body), "医生签名: 张医生")

	resp, _ = do(t, app, "GET", base+"/card?format=doc", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "GET", "/api/diagnosis/sessions/unknown", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDiagnosisRecommendation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, "GET", "/api/diagnosis/recommendation", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, diagnosis.RecommendPending, decode(t, body)["department"])

	do(t, app, "POST", "/api/history", `{"text":"心脏"}`)
	_, body = do(t, app, "GET", "/api/diagnosis/recommendation", "")
	assert.Equal(t, "心血管内科", decode(t, body)["department"])

	_, body = do(t, app, "POST", "/api/diagnosis/recommendation", `{"symptoms":["呕吐"]}`)
	assert.Equal(t, diagnosis.RecommendGeneral, decode(t, body)["department"])
}

func TestDictionaryEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, "GET", "/api/dictionary/words?category=number", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := decode(t, body)
	assert.Equal(t, float64(9), page["matched"])
	assert.Equal(t, float64(1), page["totalPages"])

	resp, _ = do(t, app, "GET", "/api/dictionary/words?category=number&page=2", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "GET", "/api/dictionary/words?category=planets", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, app, "POST", "/api/dictionary/words/8/learn", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "已开始学习\"心脏\"", decode(t, body)["message"])

	_, body = do(t, app, "GET", "/api/dictionary/stats", "")
	assert.Equal(t, float64(1), decode(t, body)["stats"].(map[string]any)["learned"])

	resp, _ = do(t, app, "POST", "/api/dictionary/words/abc/learn", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, app, "GET", "/api/dictionary/words/42", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, "DELETE", "/api/dictionary/progress", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRecognitionEndpoints(t *testing.T) {
	app, rec := newTestApp(t)

	resp, body := do(t, app, "GET", "/api/health", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, body)["connected"])

	conf := 0.92
	rec.result = recognition.Result{Success: true, Result: "发热", Confidence: &conf}
	resp, body = do(t, app, "POST", "/api/recognition/recognize", `{"image":"data:image/jpeg;base64,AAAA"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "识别成功: 发热", decode(t, body)["message"])

	record := decode(t, body)["record"].(map[string]any)
	assert.InDelta(t, 0.92, record["confidence"], 1e-9)

	zero := 0.0
	rec.result = recognition.Result{Success: true, Result: "头痛", Confidence: &zero}
	resp, body = do(t, app, "POST", "/api/recognition/recognize", `{"image":"data:image/jpeg;base64,AAAA"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	record = decode(t, body)["record"].(map[string]any)
	assert.Nil(t, record["confidence"], "zero confidence is not stored")

	_, body = do(t, app, "GET", "/api/history?timeRange=all", "")
	assert.Equal(t, float64(2), decode(t, body)["count"])

	rec.result, rec.err = recognition.Result{Error: recognition.MsgNetworkFailure}, recognition.ErrUnavailable
	resp, body = do(t, app, "POST", "/api/recognition/recognize", `{"image":"x"}`)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, CodeUnavailable, decode(t, body)["code"])

	resp, _ = do(t, app, "POST", "/api/recognition/recognize", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/api/recognition/start", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = do(t, app, "POST", "/api/recognition/start", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/api/recognition/frame", `{"image":"x"}`)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	_, body = do(t, app, "GET", "/api/recognition/status", "")
	assert.Equal(t, true, decode(t, body)["running"])

	resp, _ = do(t, app, "POST", "/api/recognition/stop", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = do(t, app, "GET", "/api/recognition/remote-history", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, body)["success"])
}
