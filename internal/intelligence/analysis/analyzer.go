// Package analysis is the boundary to the external explanation service.
// It turns a finished match result into prose for end users.  Failures are
// soft: the match result stands on its own without an explanation.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/domain/herb"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/pkg/errors"
)

// Analyzer produces a free-text explanation of a match result.
type Analyzer interface {
	Analyze(ctx context.Context, result *formula.MatchResult, input []herb.Entry) (string, error)
}

type herbPayload struct {
	Name   string  `json:"name"`
	Dosage float64 `json:"dosage"`
	Unit   string  `json:"unit"`
}

type analyzeRequest struct {
	FormulaName string        `json:"formula_name"`
	MatchType   string        `json:"match_type"`
	Score       float64       `json:"score"`
	Missing     []string      `json:"missing_herbs,omitempty"`
	Additional  []string      `json:"additional_herbs,omitempty"`
	Herbs       []herbPayload `json:"herbs"`
}

type analyzeResponse struct {
	Analysis string `json:"analysis"`
}

// HTTPAnalyzer calls the analysis service over JSON/HTTP with bounded
// retries, mirroring the identify client.
type HTTPAnalyzer struct {
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	client       *http.Client
	logger       logging.Logger
}

// NewHTTPAnalyzer builds an analyzer from the intelligence config.
func NewHTTPAnalyzer(cfg config.IntelligenceConfig, log logging.Logger) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		baseURL:      strings.TrimRight(cfg.AnalysisBaseURL, "/"),
		apiKey:       cfg.APIKey,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		client:       &http.Client{Timeout: cfg.Timeout},
		logger:       log,
	}
}

// Analyze posts the match summary and returns the service's prose.  An
// empty string with nil error means the service had nothing to say.
func (h *HTTPAnalyzer) Analyze(ctx context.Context, result *formula.MatchResult, input []herb.Entry) (string, error) {
	if result == nil || result.Formula == nil {
		return "", nil
	}

	payload := analyzeRequest{
		FormulaName: result.Formula.Name,
		MatchType:   result.MatchType.String(),
		Score:       result.Score,
		Missing:     result.MissingHerbs,
		Additional:  herb.Names(result.AdditionalHerbs),
		Herbs:       make([]herbPayload, len(input)),
	}
	for i, e := range input {
		payload.Herbs[i] = herbPayload{Name: e.Name, Dosage: e.Dosage, Unit: e.Unit}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal analyze request")
	}

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(h.retryBackoff * time.Duration(attempt)):
			}
		}

		text, retryable, err := h.post(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		h.logger.Warn("analyze attempt failed",
			logging.Int("attempt", attempt+1), logging.Err(err))
	}
	return "", lastErr
}

func (h *HTTPAnalyzer) post(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.baseURL+"/api/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeIntelUnavailable, "failed to build analyze request")
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", true, errors.Wrap(err, errors.ErrCodeIntelUnavailable, "analyze request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", true, errors.Newf(errors.ErrCodeIntelUnavailable, "analysis service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, errors.Newf(errors.ErrCodeIntelUnavailable, "analysis service returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, errors.Wrap(err, errors.ErrCodeIntelUnavailable, "failed to read analyze response")
	}

	var decoded analyzeResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode analyze response")
	}
	return decoded.Analysis, false, nil
}

// MockAnalyzer returns a fixed template, for tests and offline use.
type MockAnalyzer struct{}

// Analyze renders a short deterministic summary.
func (MockAnalyzer) Analyze(_ context.Context, result *formula.MatchResult, _ []herb.Entry) (string, error) {
	if result == nil || result.Formula == nil {
		return "", nil
	}
	return "输入与" + result.Formula.Name + "的组成对比结果为" + result.MatchType.String() + "。", nil
}
