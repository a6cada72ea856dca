package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/contact-service/internal/config"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks whether a submission token passes bot detection.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

// RecaptchaVerifier calls Google's siteverify endpoint. An unconfigured
// secret makes every check pass, matching the behavior this service
// replaced; see DESIGN.md.
type RecaptchaVerifier struct {
	secret    string
	threshold float64
	verifyURL string
	client    *http.Client
	logger    *zap.Logger
}

// NewRecaptchaVerifier builds a verifier from config.
func NewRecaptchaVerifier(cfg config.CaptchaConfig, logger *zap.Logger) *RecaptchaVerifier {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 0.5
	}
	return &RecaptchaVerifier{
		secret:    cfg.Secret,
		threshold: threshold,
		verifyURL: defaultVerifyURL,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks the token against Google and applies the score threshold.
// Network errors fail closed.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if v.secret == "" {
		v.logger.Warn("recaptcha secret not configured; skipping verification")
		return true
	}
	if token == "" {
		v.logger.Warn("no recaptcha token provided")
		return false
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Error("recaptcha request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("recaptcha verification request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.logger.Error("recaptcha response decode failed", zap.Error(err))
		return false
	}

	if !result.Success {
		v.logger.Warn("recaptcha verification failed", zap.Strings("error_codes", result.ErrorCodes))
		return false
	}
	if result.Score < v.threshold {
		v.logger.Warn("recaptcha score below threshold",
			zap.Float64("score", result.Score),
			zap.Float64("threshold", v.threshold))
		return false
	}

	v.logger.Info("recaptcha verification successful", zap.Float64("score", result.Score))
	return true
}
