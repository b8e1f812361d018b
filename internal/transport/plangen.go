// internal/transport/plangen.go
package transport

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

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrPlanGeneratorUnconfigured reports that no plan-management endpoint is set.
// The sweep treats it like any other generation failure.
var ErrPlanGeneratorUnconfigured = errors.New("plan generator URL is not configured")

// HTTPPlanGenerator asks the plan-management collaborator to regenerate one
// user-week. Plan content never passes through this service; the collaborator
// writes the new snapshot to the shared database itself.
type HTTPPlanGenerator struct {
	url       string
	authToken string
	client    *http.Client
}

// NewHTTPPlanGenerator creates the plan-management client used by the
// regeneration sweep.
func NewHTTPPlanGenerator(cfg config.PlanGeneratorConfig) *HTTPPlanGenerator {
	return &HTTPPlanGenerator{
		url:       cfg.URL,
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *HTTPPlanGenerator) RegenerateWeeklyPlan(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) error {
	if g.url == "" {
		return ErrPlanGeneratorUnconfigured
	}

	body, err := json.Marshal(map[string]string{
		"userId":    userID.Hex(),
		"weekStart": weekStart.UTC().Format("2006-01-02"),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.authToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("plan generator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("plan generator returned status %d: %s", resp.StatusCode, raw)
	}
	return nil
}
