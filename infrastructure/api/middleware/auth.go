package middleware

import (
	"net/http"
)

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	apiKeys map[string]struct{}
	enabled bool
}

// NewAuthConfigWithKeys creates an AuthConfig from the given keys. Empty
// keys are ignored; with no usable keys the config disables authentication.
func NewAuthConfigWithKeys(apiKeys []string) AuthConfig {
	if len(apiKeys) == 0 {
		return AuthConfig{enabled: false}
	}
	keys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	if len(keys) == 0 {
		return AuthConfig{enabled: false}
	}
	return AuthConfig{
		apiKeys: keys,
		enabled: true,
	}
}

// Enabled returns true if authentication is enabled.
func (c AuthConfig) Enabled() bool { return c.enabled }

// allows reports whether the given key is accepted.
func (c AuthConfig) allows(key string) bool {
	_, ok := c.apiKeys[key]
	return ok
}

// WriteProtect returns a middleware that requires X-API-KEY authentication
// for mutating methods. Reads (GET, HEAD, OPTIONS) always pass. If the
// config has no keys, all requests pass through.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled {
				next.ServeHTTP(w, r)
				return
			}

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-KEY")
			if apiKey == "" {
				WriteError(w, r, NewAuthenticationError("X-API-KEY header is required"), nil)
				return
			}
			if !config.allows(apiKey) {
				WriteError(w, r, NewAuthenticationError("invalid API key"), nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
