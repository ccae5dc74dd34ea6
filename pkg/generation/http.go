package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowdeck/flowdeck/pkg/models"
)

const defaultTimeout = 120 * time.Second

// HTTPGenerator calls a generation service over HTTP. The response body must
// decode into a step graph that already satisfies the structural invariants;
// malformed results are rejected here, not repaired.
type HTTPGenerator struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	Preferences string `json:"preferences,omitempty"`
}

// NewHTTPGenerator creates a generator posting to the given endpoint.
func NewHTTPGenerator(url string, logger *slog.Logger) *HTTPGenerator {
	return &HTTPGenerator{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

// Generate posts the prompt and optional preference hint and decodes the
// returned graph. Every failure mode surfaces as an upstream generation
// failure.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt, preferences string) (*models.Graph, error) {
	payload, err := json.Marshal(generateRequest{Prompt: prompt, Preferences: preferences})
	if err != nil {
		return nil, newGenerationError("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return nil, newGenerationError("failed to build request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, newGenerationError("request failed", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newGenerationError("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newGenerationError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var graph models.Graph

	err = json.Unmarshal(body, &graph)
	if err != nil {
		return nil, newGenerationError("unparsable response", err)
	}

	if err := graph.Validate(); err != nil {
		return nil, newGenerationError("generated graph is structurally invalid", err)
	}

	return &graph, nil
}
