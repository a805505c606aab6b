package nodes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omnidesk/scenario-engine/pkg/models"
)

const httpRequestTimeout = 30 * time.Second

// HTTPRequestHandler issues an outbound HTTP call and stores the response in
// the configured output variable. Statuses below 400 follow "out", the rest
// follow "error".
type HTTPRequestHandler struct {
	// Client overrides the default client, used by tests.
	Client *http.Client
}

func (h *HTTPRequestHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	url := configString(config, "url", "")
	if url == "" {
		return "", errors.New("missing required field 'url'")
	}

	method := strings.ToUpper(configString(config, "method", "POST"))
	body := configString(config, "body", "")

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range configStringMap(config, "headers") {
		req.Header.Set(key, value)
	}

	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: httpRequestTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if outputVar := configString(config, "output_variable", ""); outputVar != "" {
		var parsed any
		if json.Unmarshal(respBody, &parsed) == nil {
			ectx.Variables[outputVar] = parsed
		} else {
			ectx.Variables[outputVar] = string(respBody)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return models.PortError, nil
	}

	return models.PortOut, nil
}
