package main

import (
	"MoodLingo/internal/config"
	"MoodLingo/pkg/camera"
	"MoodLingo/pkg/log"
	websocketPkg "MoodLingo/pkg/websocket"
	"context"
	"github.com/joho/godotenv"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn(log.Fields{"error": err.Error()}, "Error loading .env file")
	}
	logger := log.NewLogger()

	cfg := config.LoadAppConfig()

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	websocket := websocketPkg.NewAIWebSocketClient(websocketPkg.Config{
		FaceDetectionURL: cfg.FaceDetectionURL,
		EmotionURL:       cfg.EmotionURL,
	}, logger)
	cameraSource := camera.NewFFmpegSource(camera.FFmpegConfig{
		Binary:      cfg.FFmpegPath,
		InputFormat: cfg.CameraInputFormat,
		Device:      cfg.CameraDevice,
		FPS:         cfg.CameraFPS,
	}, logger)

	server, err := config.NewServer(
		config.WithAppConfig(cfg),
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithWebSocket(websocket),
		config.WithMiddleware(),
		config.WithCamera(cameraSource),
		config.WithS3Client(),
		config.WithTranslationEndpoints(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()
	websocketPkg.ConnectInBackground(websocket, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
