package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/windfall/dialektlab/internal/client"
	"github.com/windfall/dialektlab/internal/config"
	httphandler "github.com/windfall/dialektlab/internal/handler/http"
	"github.com/windfall/dialektlab/internal/logger"
	"github.com/windfall/dialektlab/internal/server"
	"github.com/windfall/dialektlab/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("Starting dialektlab")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize generation provider
	var chatClient service.ChatClient
	var geminiClient *client.GeminiClient

	switch cfg.GenerationProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY not set, lesson generation disabled")
			break
		}
		geminiClient, err = client.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			chatClient = geminiClient.WithModel(cfg.GeminiModel)
			log.Info().Str("model", cfg.GeminiModel).Msg("Gemini client initialized")
		}
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY not set, lesson generation disabled")
			break
		}
		chatClient = client.NewOpenAIClient(cfg.OpenAIAPIKey).WithModel(cfg.OpenAIModel)
		log.Info().Str("model", cfg.OpenAIModel).Msg("OpenAI client initialized")
	}

	// Initialize TTS client
	var ttsClient *client.TTSClient
	if cfg.TTSBaseURL != "" {
		ttsClient = client.NewTTSClient(cfg.TTSBaseURL, cfg.TTSSSLVerify, cfg.TTSTimeout)
		log.Info().Str("base_url", cfg.TTSBaseURL).Bool("ssl_verify", cfg.TTSSSLVerify).Msg("TTS client initialized")
	} else {
		log.Warn().Msg("TTS_BASE_URL not set, placeholder tones only")
	}

	// Initialize Redis client (optional shared audio cache)
	var redisClient *client.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
		} else {
			log.Info().Msg("Redis client initialized")
		}
	}

	// Initialize services
	lessonService := service.NewLessonService(chatClient, log)

	var tts service.Synthesizer
	if ttsClient != nil {
		tts = ttsClient
	}
	var audioStore service.AudioStore
	if redisClient != nil {
		audioStore = redisClient
	}
	audioService := service.NewAudioService(tts, audioStore, cfg.AudioCacheTTL, log)

	// Initialize handlers
	healthHandler := httphandler.NewHealthHandler()
	apiHandler := httphandler.NewAPIHandler(log, lessonService, audioService)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(cfg, log, healthHandler, apiHandler)

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	log.Info().Str("http_addr", cfg.HTTPAddress()).Msg("Server started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Close clients
	if geminiClient != nil {
		geminiClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Info().Msg("Server stopped")
}
