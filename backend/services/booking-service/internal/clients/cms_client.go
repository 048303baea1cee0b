package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CMSClient issues the outbound handshake calls toward the charger
// management system. Any non-success response or transport failure is
// reported uniformly as an error; rollback policy stays with the caller.
type CMSClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type controlResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const controlStatusSuccess = "SUCCESS"

// NewCMSClient builds HTTP client wrapper.
func NewCMSClient(baseURL string, logger *zap.Logger) *CMSClient {
	return &CMSClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Block asks the CMS to physically block the charger.
func (c *CMSClient) Block(ctx context.Context, chargerID int64) error {
	return c.post(ctx, fmt.Sprintf("/cms/chargers/%d/block", chargerID))
}

// Unblock releases the hardware and arms the energy counter.
func (c *CMSClient) Unblock(ctx context.Context, chargerID int64) error {
	return c.post(ctx, fmt.Sprintf("/cms/chargers/%d/unblock", chargerID))
}

// Stop disarms the counter; the CMS pushes the captured totals back
// separately through the completion endpoint.
func (c *CMSClient) Stop(ctx context.Context, chargerID int64) error {
	return c.post(ctx, fmt.Sprintf("/cms/chargers/%d/stop", chargerID))
}

func (c *CMSClient) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("cms request failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("cms returned non-success", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("cms %s: status %d", path, resp.StatusCode)
	}

	var body controlResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("cms %s: decode response: %w", path, err)
	}
	if body.Status != controlStatusSuccess {
		c.logger.Warn("cms rejected command",
			zap.String("path", path),
			zap.String("status", body.Status),
			zap.String("message", body.Message))
		return fmt.Errorf("cms %s: %s", path, body.Message)
	}
	return nil
}
