package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"Glupulse_Advisor/internal/apperror"
	"Glupulse_Advisor/internal/predict"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Client-facing error messages.
const (
	msgInvalidJSON       = "Invalid JSON"
	msgAdviceUnavailable = "ไม่สามารถอ่านคำแนะนำจาก AI ได้"
	msgAssessmentFailed  = "ไม่สามารถประเมินความเสี่ยงได้"
	msgInternal          = "Internal server error"
)

// predictHandler scores the submitted biometrics and returns them merged with
// the AI advice.
func (s *Server) predictHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := zerolog.Ctx(ctx)

	var req predict.Request
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("predictHandler: could not bind request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidJSON})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	resp, err := s.predictor.Run(ctx, req.ToInput())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// respondError maps a pipeline error to its status code and client message.
func respondError(c echo.Context, err error) error {
	logger := zerolog.Ctx(c.Request().Context())
	kind := apperror.KindOf(err)

	switch kind {
	case apperror.KindInput:
		logger.Warn().Err(err).Msg("Rejected prediction request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": clientMessage(err)})
	case apperror.KindLLMService, apperror.KindAdviceFormat:
		logger.Error().Err(err).Str("kind", kind.String()).Msg("AI advice unavailable")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgAdviceUnavailable})
	case apperror.KindModel:
		logger.Error().Err(err).Str("kind", kind.String()).Msg("Risk assessment failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgAssessmentFailed})
	default:
		logger.Error().Err(err).Msg("Unexpected prediction failure")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgInternal})
	}
}

// clientMessage strips the op and kind prefix from an input error.
func clientMessage(err error) string {
	var e *apperror.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

// healthHandler reports service status, model and LLM state, and host stats.
func (s *Server) healthHandler(c echo.Context) error {
	resp := map[string]interface{}{
		"status": "online",
		"runtime": map[string]interface{}{
			"uptime":     time.Since(s.startTime).Round(time.Second).String(),
			"start_time": s.startTime.Format(time.RFC3339),
		},
		"llm": map[string]interface{}{
			"provider":      s.provider,
			"circuit_state": s.breakerState(),
		},
	}

	if s.model != nil {
		resp["model"] = s.model.Info()
	}

	runtime := resp["runtime"].(map[string]interface{})
	if hInfo, err := host.Info(); err == nil {
		runtime["os"] = hInfo.OS
		runtime["platform"] = hInfo.Platform
		runtime["arch"] = hInfo.KernelArch
		runtime["hostname"] = hInfo.Hostname
	}

	// Interval 0 compares against the previous call instead of blocking.
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		resp["cpu"] = map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
		}
	}

	if v, err := mem.VirtualMemory(); err == nil {
		resp["memory"] = map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024),
			"used_gb":      fmt.Sprintf("%.2f GB", float64(v.Used)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
		}
	}

	if d, err := disk.Usage("/"); err == nil {
		resp["disk"] = map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(d.Total)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", d.UsedPercent),
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) breakerState() string {
	if s.breaker == nil {
		return "unknown"
	}
	return s.breaker.BreakerState()
}
