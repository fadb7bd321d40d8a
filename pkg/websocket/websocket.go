package websocketPkg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"MoodLingo/internal/api/detection"
	"MoodLingo/internal/entity"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IWebsocket talks to the AI inference services that host the face
// detector and the emotion model.
type IWebsocket interface {
	DetectFaces(frame []byte) ([]entity.BoundingBox, error)
	ClassifyEmotion(tensor []float32) ([]float32, error)
	IsConnected(detectionType detection.DetectionType) bool
	Reconnect(detectionType detection.DetectionType) error
	CloseConnections()
}

type Config struct {
	FaceDetectionURL string
	EmotionURL       string
	PingInterval     time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

type faceResponse struct {
	Faces []entity.BoundingBox `json:"faces"`
	Error string               `json:"error,omitempty"`
}

type emotionResponse struct {
	Probabilities []float32 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

// serviceConn serializes request/response exchanges on one connection.
type serviceConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
	url  string
}

type webSocketClient struct {
	log          *logrus.Logger
	face         *serviceConn
	emotion      *serviceConn
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewAIWebSocketClient(cfg Config, log *logrus.Logger) IWebsocket {
	client := &webSocketClient{
		log:          log,
		face:         &serviceConn{url: cfg.FaceDetectionURL},
		emotion:      &serviceConn{url: cfg.EmotionURL},
		pingInterval: cfg.PingInterval,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
	if client.pingInterval <= 0 {
		client.pingInterval = 30 * time.Second
	}
	if client.readTimeout <= 0 {
		client.readTimeout = 10 * time.Second
	}
	if client.writeTimeout <= 0 {
		client.writeTimeout = 5 * time.Second
	}

	return client
}

// ConnectInBackground dials both services without blocking startup. A
// failed dial is retried on the first request.
func ConnectInBackground(client IWebsocket, log *logrus.Logger) {
	for _, dt := range []detection.DetectionType{detection.FaceDetection, detection.EmotionClassification} {
		go func(dt detection.DetectionType) {
			if err := client.Reconnect(dt); err != nil {
				log.Warnf("Initial connection to %s failed: %v. Will retry on demand.", getDetectionTypeName(dt), err)
				return
			}
			log.Infof("Successfully connected to %s service", getDetectionTypeName(dt))
		}(dt)
	}
}

func (c *webSocketClient) serviceFor(detectionType detection.DetectionType) (*serviceConn, error) {
	switch detectionType {
	case detection.FaceDetection:
		return c.face, nil
	case detection.EmotionClassification:
		return c.emotion, nil
	default:
		return nil, fmt.Errorf("unknown detection type %q", detectionType)
	}
}

func (c *webSocketClient) IsConnected(detectionType detection.DetectionType) bool {
	svc, err := c.serviceFor(detectionType)
	if err != nil {
		return false
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.conn != nil
}

func (c *webSocketClient) Reconnect(detectionType detection.DetectionType) error {
	svc, err := c.serviceFor(detectionType)
	if err != nil {
		return err
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return c.dialLocked(detectionType, svc)
}

func (c *webSocketClient) dialLocked(detectionType detection.DetectionType, svc *serviceConn) error {
	if svc.conn != nil {
		svc.conn.Close()
		svc.conn = nil
	}

	if svc.url == "" {
		return fmt.Errorf("URL for %s not configured", getDetectionTypeName(detectionType))
	}

	c.log.Debugf("Connecting to %s at %s", getDetectionTypeName(detectionType), svc.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(svc.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", svc.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	svc.conn = conn
	go c.keepAlive(detectionType, svc, conn)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	for _, svc := range []*serviceConn{c.face, c.emotion} {
		svc.mu.Lock()
		if svc.conn != nil {
			svc.conn.Close()
			svc.conn = nil
		}
		svc.mu.Unlock()
	}
}

// keepAlive pings conn until it is replaced, closed or a ping fails.
func (c *webSocketClient) keepAlive(detectionType detection.DetectionType, svc *serviceConn, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		svc.mu.Lock()
		if svc.conn != conn {
			svc.mu.Unlock()
			return
		}
		svc.mu.Unlock()

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Ping failed for %s, marking connection as dead: %v", getDetectionTypeName(detectionType), err)
			svc.mu.Lock()
			if svc.conn == conn {
				svc.conn = nil
			}
			svc.mu.Unlock()
			conn.Close()
			return
		}
	}
}

// exchange sends one message and reads its reply, redialing once when
// there is no live connection. Any I/O error drops the connection.
func (c *webSocketClient) exchange(detectionType detection.DetectionType, messageType int, payload []byte) ([]byte, error) {
	svc, err := c.serviceFor(detectionType)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.conn == nil {
		if err := c.dialLocked(detectionType, svc); err != nil {
			return nil, fmt.Errorf("cannot connect to %s service: %w", getDetectionTypeName(detectionType), err)
		}
	}
	conn := svc.conn

	drop := func() {
		svc.conn = nil
		conn.Close()
	}

	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(messageType, payload); err != nil {
		drop()
		return nil, fmt.Errorf("error sending to %s: %w", getDetectionTypeName(detectionType), err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		drop()
		return nil, fmt.Errorf("error reading from %s: %w", getDetectionTypeName(detectionType), err)
	}

	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	return message, nil
}

func (c *webSocketClient) DetectFaces(frame []byte) ([]entity.BoundingBox, error) {
	c.log.Debugf("Sending frame of size: %d bytes", len(frame))

	message, err := c.exchange(detection.FaceDetection, websocket.BinaryMessage, frame)
	if err != nil {
		return nil, err
	}

	var result faceResponse
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling face response: %w", err)
	}
	if result.Error != "" {
		return nil, errors.New(result.Error)
	}

	faces := make([]entity.BoundingBox, 0, len(result.Faces))
	for _, f := range result.Faces {
		if f.Empty() {
			continue
		}
		faces = append(faces, f)
	}

	c.log.Debugf("Face detection returned %d faces", len(faces))
	return faces, nil
}

func (c *webSocketClient) ClassifyEmotion(tensor []float32) ([]float32, error) {
	message, err := c.exchange(detection.EmotionClassification, websocket.BinaryMessage, EncodeTensor(tensor))
	if err != nil {
		return nil, err
	}

	var result emotionResponse
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling emotion response: %w", err)
	}
	if result.Error != "" {
		return nil, errors.New(result.Error)
	}
	if len(result.Probabilities) == 0 {
		return nil, errors.New("emotion service returned no probabilities")
	}

	return result.Probabilities, nil
}

// EncodeTensor writes tensor as little-endian float32 values.
func EncodeTensor(tensor []float32) []byte {
	buf := make([]byte, 4*len(tensor))
	for i, v := range tensor {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func DecodeTensor(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("tensor payload length %d is not a multiple of 4", len(buf))
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

func getDetectionTypeName(detectionType detection.DetectionType) string {
	switch detectionType {
	case detection.FaceDetection:
		return "Face Detection"
	case detection.EmotionClassification:
		return "Emotion Classification"
	default:
		return "Unknown Detection"
	}
}
