package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Glupulse_Advisor/internal/advice"
	"Glupulse_Advisor/internal/config"
	"Glupulse_Advisor/internal/health"
	"Glupulse_Advisor/internal/logger"
	"Glupulse_Advisor/internal/predict"
	"Glupulse_Advisor/internal/riskmodel"
	"Glupulse_Advisor/internal/server"

	"github.com/rs/zerolog/log"
)

func gracefulShutdown(apiServer *http.Server, wait time.Duration, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server how long it has to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// newCompleter picks the chat backend named by cfg.Provider.
func newCompleter(cfg config.LLMConfig) advice.Completer {
	if cfg.Provider == config.ProviderGemini {
		return advice.NewGeminiClient(cfg.GeminiKey, cfg.GeminiBaseURL, cfg.GeminiModel, nil)
	}
	return advice.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	model, err := riskmodel.Load(loadCtx, cfg.Model.ModelPath, cfg.Model.ScalerPath)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load risk model")
	}

	reqCfg := advice.DefaultRequesterConfig()
	reqCfg.Timeout = cfg.LLM.Timeout
	reqCfg.Retries = cfg.LLM.Retries
	reqCfg.Backoff = cfg.LLM.Backoff
	requester := advice.NewRequester(newCompleter(cfg.LLM), reqCfg)

	pipeline := predict.NewPipeline(health.NewCalculator(model), requester)

	apiServer := server.NewServer(cfg, server.Dependencies{
		Predictor: pipeline,
		Model:     model,
		Breaker:   requester,
		Provider:  cfg.LLM.Provider,
	})

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, cfg.ShutdownWait, done)

	log.Info().
		Str("addr", apiServer.Addr).
		Str("provider", cfg.LLM.Provider).
		Msg("Server starting")

	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
