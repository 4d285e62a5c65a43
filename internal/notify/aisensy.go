package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AiSensyProvider sends fee reminders over WhatsApp via AiSensy's
// campaign API. Business API messages are template-based; the campaign
// carries the rendered reminder text as its single template parameter.
type AiSensyProvider struct {
	apiKey       string
	campaignName string
	baseURL      string
	client       *http.Client
}

func NewAiSensyProvider(apiKey, campaignName string) *AiSensyProvider {
	if campaignName == "" {
		campaignName = "fee_reminder"
	}
	return &AiSensyProvider{
		apiKey:       apiKey,
		campaignName: campaignName,
		baseURL:      "https://backend.aisensy.com/campaign/t1/api/v2",
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *AiSensyProvider) Name() string { return "aisensy" }

func (p *AiSensyProvider) Send(ctx context.Context, recipient, message string) (string, error) {
	payload := map[string]interface{}{
		"apiKey":         p.apiKey,
		"campaignName":   p.campaignName,
		"destination":    formatPhoneNumber(recipient),
		"userName":       "Guardian",
		"templateParams": []string{message},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AiSensy API error: %s", string(body))
	}

	var apiResp map[string]interface{}
	json.Unmarshal(body, &apiResp)
	if id, ok := apiResp["submitted_message_id"].(string); ok {
		return id, nil
	}
	return "", nil
}

// formatPhoneNumber normalizes an Indian mobile number to E.164
func formatPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+")
	if len(phone) == 10 {
		return "91" + phone
	}
	return phone
}
