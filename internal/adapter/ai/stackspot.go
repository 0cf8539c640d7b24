package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/qaforge/qaforge/internal/config"
)

const (
	stackSpotIDMBaseURL  = "https://idm.stackspot.com"
	stackSpotChatBaseURL = "https://genai-inference-app.stackspot.com"
)

// StackSpotProvider generates text through a StackSpot GenAI agent. Tokens
// come from the client-credentials grant and are cached until shortly before
// they expire.
type StackSpotProvider struct {
	clientID    string
	clientKey   string
	realm       string
	agentID     string
	idmBaseURL  string
	chatBaseURL string
	httpClient  *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewStackSpotProvider creates a StackSpot-backed provider
func NewStackSpotProvider(cfg config.AIConfig, httpClient *http.Client) *StackSpotProvider {
	return &StackSpotProvider{
		clientID:    cfg.StackSpotClientID,
		clientKey:   cfg.StackSpotClientKey,
		realm:       cfg.StackSpotRealm,
		agentID:     cfg.StackSpotAgentID,
		idmBaseURL:  stackSpotIDMBaseURL,
		chatBaseURL: stackSpotChatBaseURL,
		httpClient:  httpClient,
	}
}

// Name identifies the provider
func (p *StackSpotProvider) Name() string {
	return "stackspot"
}

// Generate sends the prompt to the configured agent
func (p *StackSpotProvider) Generate(ctx context.Context, prompt string) (string, error) {
	token, err := p.token(ctx)
	if err != nil {
		return "", err
	}

	requestBody := map[string]interface{}{
		"streaming":             false,
		"user_prompt":           prompt,
		"stackspot_knowledge":   false,
		"return_ks_in_response": false,
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	chatURL := fmt.Sprintf("%s/v1/agent/%s/chat", p.chatBaseURL, p.agentID)
	req, err := http.NewRequestWithContext(ctx, "POST", chatURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call StackSpot API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("StackSpot API error: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Message == "" {
		return "", fmt.Errorf("empty message in response")
	}

	return response.Message, nil
}

// token returns a cached access token, fetching a fresh one when the cached
// token is within a minute of expiring
func (p *StackSpotProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry.Add(-time.Minute)) {
		return p.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientKey)

	tokenURL := fmt.Sprintf("%s/%s/oidc/oauth/token", p.idmBaseURL, p.realm)
	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call StackSpot IDM: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("StackSpot IDM error: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if response.AccessToken == "" {
		return "", fmt.Errorf("no access token in response")
	}

	p.accessToken = response.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(response.ExpiresIn) * time.Second)

	return p.accessToken, nil
}
