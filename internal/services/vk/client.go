package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/config"
	"github.com/amaumene/mewatch/internal/services/social"
)

const (
	authorizeURL = "https://oauth.vk.com/authorize"
	tokenURL     = "https://oauth.vk.com/access_token"
	apiBaseURL   = "https://api.vk.com/method/"
	apiVersion   = "5.92"
)

// Integration implements the social.Integration strategy for vk.com
type Integration struct {
	clientID     string
	clientSecret string
	apiBase      string
	httpClient   *http.Client
	logger       *logrus.Logger
}

// NewIntegration creates the VK OAuth integration
func NewIntegration(cfg *config.Config, logger *logrus.Logger) *Integration {
	return &Integration{
		clientID:     cfg.VKClientID,
		clientSecret: cfg.VKClientSecret,
		apiBase:      apiBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Type identifies the provider
func (i *Integration) Type() string {
	return "vk"
}

// AuthorizeURL is VK's user-facing authorization endpoint
func (i *Integration) AuthorizeURL() string {
	return authorizeURL
}

// TokenURL is VK's code-for-token exchange endpoint
func (i *Integration) TokenURL() string {
	return tokenURL
}

// ClientID returns the configured application id
func (i *Integration) ClientID() string {
	return i.clientID
}

// ClientSecret returns the configured application secret
func (i *Integration) ClientSecret() string {
	return i.clientSecret
}

// RedirectURI builds the callback URI for this provider
func (i *Integration) RedirectURI(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + i.Type() + "/callback"
}

// userResponse is the envelope VK wraps API results in
type userResponse struct {
	Response []struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"response"`
}

// PersonalInfo fetches the authorized user's name via the users.get API method
func (i *Integration) PersonalInfo(ctx context.Context, accessToken, externalUserID string) (*social.PersonalInfo, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("v", apiVersion)

	methodURL := i.apiBase + "users.get?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, methodURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vk API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vk API returned status %d: %s", resp.StatusCode, string(body))
	}

	var users userResponse
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode vk response: %w", err)
	}
	if len(users.Response) == 0 {
		return nil, fmt.Errorf("vk users.get returned no users for id %s", externalUserID)
	}

	i.logger.WithField("external_user_id", externalUserID).Debug("Fetched VK personal info")

	return &social.PersonalInfo{
		FirstName: users.Response[0].FirstName,
		LastName:  users.Response[0].LastName,
	}, nil
}
