package websocketPkg

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"MoodLingo/internal/api/detection"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAIServer answers every binary message with reply(payload). It counts
// accepted connections.
func newAIServer(t *testing.T, reply func([]byte) []byte) (string, *atomic.Int32) {
	t.Helper()
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns.Add(1)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, reply(msg)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), &conns
}

func newTestClient(faceURL, emotionURL string) IWebsocket {
	l, _ := test.NewNullLogger()
	return NewAIWebSocketClient(Config{
		FaceDetectionURL: faceURL,
		EmotionURL:       emotionURL,
		ReadTimeout:      2 * time.Second,
		WriteTimeout:     time.Second,
	}, l)
}

func TestDetectFacesDialsLazily(t *testing.T) {
	url, conns := newAIServer(t, func([]byte) []byte {
		return []byte(`{"faces":[{"x":10,"y":20,"width":30,"height":40},{"x":0,"y":0,"width":0,"height":5}]}`)
	})
	client := newTestClient(url, "")
	defer client.CloseConnections()

	assert.False(t, client.IsConnected(detection.FaceDetection))

	faces, err := client.DetectFaces([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.Equal(t, 10, faces[0].X)
	assert.Equal(t, 40, faces[0].Height)
	assert.True(t, client.IsConnected(detection.FaceDetection))

	_, err = client.DetectFaces([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	require.NoError(t, err)
	assert.Equal(t, int32(1), conns.Load())
}

func TestClassifyEmotionSendsTensor(t *testing.T) {
	var received []float32
	url, _ := newAIServer(t, func(msg []byte) []byte {
		received, _ = DecodeTensor(msg)
		return []byte(`{"probabilities":[0.1,0.7,0.2]}`)
	})
	client := newTestClient("", url)
	defer client.CloseConnections()

	probs, err := client.ClassifyEmotion([]float32{0, 0.5, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.7, 0.2}, probs)
	assert.Equal(t, []float32{0, 0.5, 1}, received)
}

func TestServiceErrorIsReturned(t *testing.T) {
	url, _ := newAIServer(t, func([]byte) []byte {
		return []byte(`{"error":"model not loaded"}`)
	})
	client := newTestClient("", url)
	defer client.CloseConnections()

	_, err := client.ClassifyEmotion([]float32{1})
	assert.EqualError(t, err, "model not loaded")
}

func TestUnconfiguredURL(t *testing.T) {
	client := newTestClient("", "")

	_, err := client.DetectFaces([]byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	assert.False(t, client.IsConnected(detection.FaceDetection))
}

func TestTensorRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, 1, -3.5}

	out, err := DecodeTensor(EncodeTensor(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = DecodeTensor([]byte{1, 2, 3})
	assert.Error(t, err)
}
