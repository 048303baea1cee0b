package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// BookingClient calls back into the booking authority: state confirmations
// on block/unblock and the final session data push.
type BookingClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type completePayload struct {
	ChargerID       int64   `json:"charger_id"`
	TotalEnergy     float64 `json:"total_energy"`
	DurationSeconds int64   `json:"duration_seconds"`
}

// NewBookingClient builds HTTP client wrapper.
func NewBookingClient(baseURL string, logger *zap.Logger) *BookingClient {
	return &BookingClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// ConfirmUnblock tells the authority the charger is free again.
func (c *BookingClient) ConfirmUnblock(ctx context.Context, chargerID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/chargers/%d/unblock", chargerID), nil)
}

// ConfirmBlock acknowledges a block toward the authority.
func (c *BookingClient) ConfirmBlock(ctx context.Context, chargerID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/chargers/%d/block", chargerID), nil)
}

// Complete pushes the captured session totals to the authority.
func (c *BookingClient) Complete(ctx context.Context, chargerID int64, totalEnergy float64, durationSeconds int64) error {
	return c.do(ctx, http.MethodPost, "/bookings/complete", completePayload{
		ChargerID:       chargerID,
		TotalEnergy:     totalEnergy,
		DurationSeconds: durationSeconds,
	})
}

func (c *BookingClient) do(ctx context.Context, method, path string, body interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("booking authority request failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("booking authority returned non-success",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("booking authority %s: status %d", path, resp.StatusCode)
	}
	return nil
}
