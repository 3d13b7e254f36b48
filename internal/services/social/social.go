package social

import "context"

// PersonalInfo is the provider-agnostic personal data fetched after login
type PersonalInfo struct {
	FirstName string
	LastName  string
}

// Integration is a pluggable OAuth2 provider strategy. Implementations supply
// provider configuration and the provider-specific personal-info fetch; the
// login flow itself is generic over this interface.
type Integration interface {
	// Type is the provider identifier, also used as the URL prefix (e.g. "vk")
	Type() string
	// AuthorizeURL is the provider's user-facing authorization endpoint
	AuthorizeURL() string
	// TokenURL is the provider's code-for-token exchange endpoint
	TokenURL() string
	ClientID() string
	ClientSecret() string
	// RedirectURI builds the callback URI registered with the provider
	RedirectURI(baseURL string) string
	// PersonalInfo fetches first/last name for the authorized external user
	PersonalInfo(ctx context.Context, accessToken, externalUserID string) (*PersonalInfo, error)
}
