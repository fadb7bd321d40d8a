package config

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MoodLingo/internal/api/detection"
	"MoodLingo/internal/entity"
	"MoodLingo/pkg/camera"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offlineCamera struct{}

func (offlineCamera) Open(context.Context) (camera.Device, error) {
	return nil, errors.New("no such device")
}

type idleInference struct{ closed bool }

func (i *idleInference) DetectFaces([]byte) ([]entity.BoundingBox, error) { return nil, nil }
func (i *idleInference) ClassifyEmotion([]float32) ([]float32, error)     { return nil, nil }
func (i *idleInference) IsConnected(detection.DetectionType) bool         { return false }
func (i *idleInference) Reconnect(detection.DetectionType) error          { return nil }
func (i *idleInference) CloseConnections()                                { i.closed = true }

type echoEndpoint struct{}

func (echoEndpoint) Name() string { return "echo" }
func (echoEndpoint) Translate(_ context.Context, text, _, _ string) (string, error) {
	return strings.ToUpper(text), nil
}

func newTestServer(t *testing.T) (*Server, *idleInference) {
	t.Helper()
	l, _ := test.NewNullLogger()
	inference := &idleInference{}

	cfg := LoadAppConfig()
	cfg.LabelsPath = ""

	srv, err := NewServer(
		WithAppConfig(cfg),
		WithFiber(fiber.New()),
		WithLogger(l),
		WithMiddleware(),
		WithCamera(offlineCamera{}),
		WithWebSocket(inference),
		WithS3Client(),
		WithTranslationEndpoints(echoEndpoint{}),
	)
	require.NoError(t, err)
	srv.RegisterHandler()
	return srv, inference
}

func do(t *testing.T, srv *Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := srv.engine.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, body := do(t, srv, req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Flask server is running"}`, body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRoutesAreWired(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/video_feed", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Camera not available"}`, body)

	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body = do(t, srv, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"success","original":"hi","translated":"HI","direction":"en2bn","service":"echo"}`, body)
}

func TestNewServerRequiresDependencies(t *testing.T) {
	l, _ := test.NewNullLogger()

	_, err := NewServer(WithFiber(fiber.New()), WithLogger(l))
	assert.Error(t, err)

	_, err = NewServer(WithMiddleware())
	assert.EqualError(t, err, "failed to apply option: logger must be initialized before middleware")
}

func TestShutdownClosesDependencies(t *testing.T) {
	srv, inference := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))
	assert.True(t, inference.closed)
}
