// internal/advice/provider.go
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vitacoach/adherence-app/internal/config"
)

// ErrAdviceDisabled reports that the selected provider refuses to generate
// advice. The mock provider always returns it: synthetic text must never reach
// a user as if a coach wrote it, even through a misconfigured environment.
var ErrAdviceDisabled = errors.New("advice generation is disabled for this provider")

// Result is one generated advice text plus the fingerprint it was computed for.
type Result struct {
	Text        string `json:"text"`
	Fingerprint string `json:"fingerprint"`
	Provider    string `json:"provider"`
}

// Provider generates coaching advice for a request. Implementations must be
// cheap to construct: the factory builds one per operation so the selection
// follows configuration without hidden global state.
type Provider interface {
	GenerateAdvice(ctx context.Context, req Request) (*Result, error)
}

// NewProvider selects the provider for this operation. Only the explicit
// "openai" value yields a live provider; everything else is the refusing mock.
func NewProvider(cfg config.AdviceConfig) Provider {
	if cfg.Provider == "openai" && cfg.APIKey != "" {
		return &openaiProvider{apiKey: cfg.APIKey, client: &http.Client{Timeout: 30 * time.Second}}
	}
	return &mockProvider{}
}

// mockProvider is the non-production stand-in. It refuses instead of
// fabricating advice.
type mockProvider struct{}

func (m *mockProvider) GenerateAdvice(ctx context.Context, req Request) (*Result, error) {
	return nil, ErrAdviceDisabled
}

// openaiProvider calls the chat completions API with the numeric week shape.
type openaiProvider struct {
	apiKey string
	client *http.Client
}

const openaiEndpoint = "https://api.openai.com/v1/chat/completions"

func (p *openaiProvider) GenerateAdvice(ctx context.Context, req Request) (*Result, error) {
	fingerprint, err := Fingerprint(req)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"The user completed %d%% of training and %d%% of nutrition this week (total %d%%), with %d planned sessions and %d planned meals. Recommended action: %s. Write two short, encouraging coaching sentences.",
		req.TrainingPercent, req.NutritionPercent, req.TotalPercent,
		req.PlannedSessions, req.PlannedMeals, req.NextAction,
	)

	body, err := json.Marshal(map[string]interface{}{
		"model": "gpt-4o-mini",
		"messages": []map[string]string{
			{"role": "system", "content": "You are a supportive fitness and nutrition coach."},
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("advice provider returned status %d: %s", resp.StatusCode, raw)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode advice response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("advice provider returned no choices")
	}

	return &Result{
		Text:        parsed.Choices[0].Message.Content,
		Fingerprint: fingerprint,
		Provider:    "openai",
	}, nil
}
