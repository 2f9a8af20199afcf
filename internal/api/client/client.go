package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/ticketeye/internal/engine"
	"github.com/ticketeye/internal/models"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient() (*Client, error) {
	baseURL := os.Getenv("TICKETEYE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	apiKey := os.Getenv("TICKETEYE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("TICKETEYE_API_KEY environment variable is not set")
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *Client) ListAlerts(activeOnly bool) ([]models.Alert, error) {
	endpoint := "/api/v1/alerts"
	if activeOnly {
		endpoint = "/api/v1/alerts/active"
	}

	var alerts []models.Alert
	if err := c.get(endpoint, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *Client) AlertHistory(ticketID string) ([]models.Alert, error) {
	endpoint := "/api/v1/alerts/history"
	if ticketID != "" {
		query := url.Values{}
		query.Set("ticket_id", ticketID)
		endpoint += "?" + query.Encode()
	}

	var alerts []models.Alert
	if err := c.get(endpoint, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *Client) AcknowledgeAlert(alertID string) error {
	return c.do(http.MethodPut, fmt.Sprintf("/api/v1/alerts/%s/acknowledge", alertID), nil, nil)
}

func (c *Client) AcknowledgeAll() error {
	return c.do(http.MethodPost, "/api/v1/alerts/acknowledge-all", nil, nil)
}

func (c *Client) DismissAlert(alertID string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/api/v1/alerts/%s", alertID), nil, nil)
}

func (c *Client) ClearAlerts() error {
	return c.do(http.MethodDelete, "/api/v1/alerts", nil, nil)
}

func (c *Client) GetConfig() (*models.SLAConfig, error) {
	var cfg models.SLAConfig
	if err := c.get("/api/v1/sla/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) UpdateConfig(update engine.ConfigUpdate) (*models.SLAConfig, error) {
	var cfg models.SLAConfig
	if err := c.do(http.MethodPatch, "/api/v1/sla/config", update, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) SetEnabled(enabled bool) error {
	data := map[string]bool{"enabled": enabled}
	return c.do(http.MethodPut, "/api/v1/sla/enabled", data, nil)
}

func (c *Client) RequestPermission() (bool, error) {
	var resp struct {
		Granted bool `json:"granted"`
	}
	if err := c.do(http.MethodPost, "/api/v1/sla/permission", nil, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

func (c *Client) get(endpoint string, v interface{}) error {
	return c.do(http.MethodGet, endpoint, nil, v)
}

func (c *Client) do(method, endpoint string, data, v interface{}) error {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %v", err)
		}
		body = bytes.NewReader(jsonData)
	}

	resp, err := c.doRequest(method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

func (c *Client) doRequest(method, endpoint string, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %v", err)
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %v", err)
	}
	u.Path = path.Join(u.Path, parsed.Path)
	u.RawQuery = parsed.RawQuery

	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("API error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return resp, nil
}
