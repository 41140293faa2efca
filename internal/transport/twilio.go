package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioProvider captures call media through the Twilio Recordings API.
type TwilioProvider struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string

	// BaseURL overrides the Twilio API root; tests point it at a local server.
	BaseURL    string
	HTTPClient *http.Client
}

func NewTwilioProvider(cfg TwilioConfig) *TwilioProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioAPIBase
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TwilioProvider{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
	}
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) HealthCheck(ctx context.Context) error {
	u := fmt.Sprintf("%s/Accounts/%s.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.accountSID, p.authToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: twilio health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transport: twilio health check returned %d", resp.StatusCode)
	}
	return nil
}

type twilioRecording struct {
	Sid         string `json:"sid"`
	DateCreated string `json:"date_created"`
	Status      string `json:"status"`
}

func (p *TwilioProvider) StartCapture(ctx context.Context, req StartCaptureRequest) (StartCaptureResult, error) {
	if req.ProviderCallID == "" {
		return StartCaptureResult{}, fmt.Errorf("transport: provider call id required")
	}

	u := fmt.Sprintf("%s/Accounts/%s/Calls/%s/Recordings.json", p.baseURL, p.accountSID, req.ProviderCallID)
	form := url.Values{}
	form.Set("RecordingChannels", "dual")

	rec, err := p.postForm(ctx, u, form)
	if err != nil {
		return StartCaptureResult{}, err
	}
	return StartCaptureResult{
		RecordingRef: rec.Sid,
		StartedAt:    time.Now().UTC(),
	}, nil
}

func (p *TwilioProvider) StopCapture(ctx context.Context, req StopCaptureRequest) (StopCaptureResult, error) {
	if req.ProviderCallID == "" || req.RecordingRef == "" {
		return StopCaptureResult{}, fmt.Errorf("transport: provider call id and recording ref required")
	}

	u := fmt.Sprintf("%s/Accounts/%s/Calls/%s/Recordings/%s.json", p.baseURL, p.accountSID, req.ProviderCallID, req.RecordingRef)
	form := url.Values{}
	form.Set("Status", "stopped")

	if _, err := p.postForm(ctx, u, form); err != nil {
		return StopCaptureResult{}, err
	}
	return StopCaptureResult{StoppedAt: time.Now().UTC()}, nil
}

func (p *TwilioProvider) postForm(ctx context.Context, u string, form url.Values) (twilioRecording, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return twilioRecording{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.accountSID, p.authToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return twilioRecording{}, fmt.Errorf("transport: twilio request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return twilioRecording{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return twilioRecording{}, fmt.Errorf("transport: twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var rec twilioRecording
	if err := json.Unmarshal(raw, &rec); err != nil {
		return twilioRecording{}, fmt.Errorf("transport: decode twilio response: %w", err)
	}
	return rec, nil
}
