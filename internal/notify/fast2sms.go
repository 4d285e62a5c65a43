package notify

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

// Fast2SMSProvider sends fee reminders over SMS via Fast2SMS (India)
type Fast2SMSProvider struct {
	apiKey   string
	route    string // "q" (quick), "dlt" (registered sender), "v3" (promotional)
	senderID string // DLT sender id, e.g. "SCHFEE"
	client   *http.Client
}

func NewFast2SMSProvider(apiKey, route, senderID string) *Fast2SMSProvider {
	if route == "" {
		route = "q"
	}
	return &Fast2SMSProvider{
		apiKey:   apiKey,
		route:    route,
		senderID: senderID,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *Fast2SMSProvider) Name() string { return "fast2sms" }

// Send delivers one SMS and returns the Fast2SMS request id
func (p *Fast2SMSProvider) Send(ctx context.Context, recipient, message string) (string, error) {
	var apiURL string
	switch p.route {
	case "dlt":
		apiURL = fmt.Sprintf(
			"https://www.fast2sms.com/dev/bulkV2?authorization=%s&route=dlt&sender_id=%s&message=%s&flash=0&numbers=%s",
			url.QueryEscape(p.apiKey),
			url.QueryEscape(p.senderID),
			url.QueryEscape(message),
			url.QueryEscape(recipient),
		)
	case "v3":
		apiURL = fmt.Sprintf(
			"https://www.fast2sms.com/dev/bulkV2?authorization=%s&route=v3&sender_id=%s&message=%s&language=english&numbers=%s",
			url.QueryEscape(p.apiKey),
			url.QueryEscape(p.senderID),
			url.QueryEscape(message),
			url.QueryEscape(recipient),
		)
	default:
		apiURL = fmt.Sprintf(
			"https://www.fast2sms.com/dev/bulkV2?authorization=%s&route=q&message=%s&language=english&flash=0&numbers=%s",
			url.QueryEscape(p.apiKey),
			url.QueryEscape(message),
			url.QueryEscape(recipient),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create SMS request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("SMS API error (status %d): %s", resp.StatusCode, string(body))
	}
	if strings.Contains(string(body), `"return":false`) {
		return "", fmt.Errorf("SMS API error: %s", string(body))
	}

	var apiResp map[string]interface{}
	json.Unmarshal(body, &apiResp)
	if requestID, ok := apiResp["request_id"].(string); ok {
		return requestID, nil
	}
	return "", nil
}
