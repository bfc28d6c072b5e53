package recognition

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	c := NewClient(url, time.Second, zap.NewNop())
	c.now = func() time.Time { return time.Date(2025, 3, 12, 7, 0, 0, 0, time.UTC) }
	return c
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	h := newTestClient(srv.URL + "/").CheckHealth(context.Background())
	assert.Equal(t, Health{Status: "ok"}, h)
}

func TestCheckHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h := newTestClient(url).CheckHealth(context.Background())
	assert.Equal(t, "error", h.Status)
	assert.Equal(t, MsgHealthUnreachable, h.Message)
}

func TestRecognize(t *testing.T) {
	var got recognizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/recognize", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"result":"头","confidence":0.87}`))
	}))
	defer srv.Close()

	r, err := newTestClient(srv.URL).Recognize(context.Background(), "data:image/jpeg;base64,AAAA")
	require.NoError(t, err)
	assert.True(t, r.Recognized())
	assert.Equal(t, "头", r.Result)
	assert.InDelta(t, 0.87, *r.Confidence, 1e-9)

	assert.Equal(t, "data:image/jpeg;base64,AAAA", got.Image)
	assert.Equal(t, "2025-03-12T07:00:00.000Z", got.Timestamp)
}

func TestRecognizeNoHand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	r, err := newTestClient(srv.URL).Recognize(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, r.Recognized())
	assert.Equal(t, MsgNoHand, r.Error)
}

func TestRecognizeFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	r, err := newTestClient(srv.URL).Recognize(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, MsgNetworkFailure, r.Error)

	srv.Close()
	_, err = newTestClient(srv.URL).Recognize(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/history", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":[{"result":"手"},{"result":"头"}],"count":2}`))
	}))
	defer srv.Close()

	h := newTestClient(srv.URL).GetHistory(context.Background())
	assert.True(t, h.Success)
	assert.Equal(t, 2, h.Count)
	assert.JSONEq(t, `{"result":"手"}`, string(h.Data[0]))

	srv.Close()
	h = newTestClient(srv.URL).GetHistory(context.Background())
	assert.False(t, h.Success)
	assert.Empty(t, h.Data)
	assert.NotNil(t, h.Data)
}
