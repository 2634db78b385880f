/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the prediction
pipeline into the router.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"Glupulse_Advisor/internal/config"
	"Glupulse_Advisor/internal/health"
	"Glupulse_Advisor/internal/predict"
	"Glupulse_Advisor/internal/riskmodel"
)

// Predictor runs the full response pipeline. *predict.Pipeline satisfies it.
type Predictor interface {
	Run(ctx context.Context, in health.UserInput) (predict.Response, error)
}

// ModelInfo describes the loaded classifier. *riskmodel.Model satisfies it.
type ModelInfo interface {
	Info() riskmodel.Info
}

// BreakerReporter exposes the LLM circuit state. *advice.Requester satisfies it.
type BreakerReporter interface {
	BreakerState() string
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// corsOrigins lists the origins allowed by the CORS middleware.
	corsOrigins []string

	predictor Predictor
	model     ModelInfo
	breaker   BreakerReporter

	// provider names the LLM backend reported by /health.
	provider string

	startTime time.Time
}

// Dependencies bundles the services the routes need.
type Dependencies struct {
	Predictor Predictor
	Model     ModelInfo
	Breaker   BreakerReporter
	Provider  string
}

// New builds a Server from cfg and deps.
func New(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		port:        cfg.Port,
		corsOrigins: cfg.CORSOrigins,
		predictor:   deps.Predictor,
		model:       deps.Model,
		breaker:     deps.Breaker,
		provider:    deps.Provider,
		startTime:   time.Now(),
	}
}

// NewServer returns a configured *http.Server for cfg. The write timeout
// leaves room for every LLM attempt plus the backoff between them.
func NewServer(cfg *config.Config, deps Dependencies) *http.Server {
	app := New(cfg, deps)

	attempts := time.Duration(cfg.LLM.Retries + 1)
	writeTimeout := attempts*(cfg.LLM.Timeout+cfg.LLM.Backoff) + 10*time.Second

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
	}
}
