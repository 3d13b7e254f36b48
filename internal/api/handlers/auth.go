package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/controllers"
	"github.com/amaumene/mewatch/internal/services/social"
)

// AuthHandler handles token auth and the OAuth2 login flow
type AuthHandler struct {
	authCtrl   *controllers.AuthController
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authCtrl *controllers.AuthController, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authCtrl:   authCtrl,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type obtainTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ObtainToken exchanges username/password for the user's API token
func (h *AuthHandler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req obtainTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	token, err := h.authCtrl.ObtainToken(req.Username, req.Password)
	if err != nil {
		if err == controllers.ErrInvalidCredentials {
			writeError(w, http.StatusBadRequest, "Unable to log in with provided credentials.")
			return
		}
		h.logger.WithError(err).Error("Failed to obtain token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token.Key})
}

// OAuthInit redirects the user agent to the provider's authorize endpoint
func (h *AuthHandler) OAuthInit(integration social.Integration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := url.Values{}
		params.Set("client_id", integration.ClientID())
		params.Set("redirect_uri", integration.RedirectURI(requestBaseURL(r)))
		params.Set("response_type", "code")

		http.Redirect(w, r, integration.AuthorizeURL()+"?"+params.Encode(), http.StatusFound)
	}
}

// tokenExchangeResponse is the provider's code-for-token exchange result
type tokenExchangeResponse struct {
	AccessToken string      `json:"access_token"`
	UserID      json.Number `json:"user_id"`
}

// OAuthCallback exchanges the authorization code for a provider token and
// resolves it to a local user and token. A callback without a code echoes the
// received query parameters with a 400; a failed exchange forwards the
// provider's response verbatim.
func (h *AuthHandler) OAuthCallback(integration social.Integration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		code := query.Get("code")
		if code == "" {
			received := make(map[string]string, len(query))
			for key := range query {
				received[key] = query.Get(key)
			}
			writeJSON(w, http.StatusBadRequest, received)
			return
		}

		params := url.Values{}
		params.Set("client_id", integration.ClientID())
		params.Set("client_secret", integration.ClientSecret())
		params.Set("redirect_uri", integration.RedirectURI(requestBaseURL(r)))
		params.Set("code", code)

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, integration.TokenURL()+"?"+params.Encode(), nil)
		if err != nil {
			h.logger.WithError(err).Error("Failed to create token exchange request")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		resp, err := h.httpClient.Do(req)
		if err != nil {
			h.logger.WithError(err).Error("Token exchange request failed")
			writeError(w, http.StatusBadGateway, "Provider unreachable")
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			h.logger.WithError(err).Error("Failed to read token exchange response")
			writeError(w, http.StatusBadGateway, "Provider unreachable")
			return
		}

		var exchange tokenExchangeResponse
		_ = json.Unmarshal(body, &exchange)
		if exchange.AccessToken == "" {
			// Forward the provider's error response unchanged
			if contentType := resp.Header.Get("Content-Type"); contentType != "" {
				w.Header().Set("Content-Type", contentType)
			}
			w.WriteHeader(resp.StatusCode)
			w.Write(body)
			return
		}

		token, user, err := h.authCtrl.SocialLogin(r.Context(), integration, exchange.AccessToken, exchange.UserID.String())
		if err != nil {
			h.logger.WithError(err).WithField("provider", integration.Type()).Error("Social login failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":   token.Key,
			"user_id": user.ID,
		})
	}
}

// requestBaseURL reconstructs the externally visible base URL of the request
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
