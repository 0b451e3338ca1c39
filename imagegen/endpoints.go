package imagegen

import "strings"

// IsAzureEndpoint checks if the given endpoint URL is an Azure OpenAI
// endpoint. Case-insensitive substring matching against known Azure domain
// patterns. This is a pure function with no side effects.
func IsAzureEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	lower := strings.ToLower(endpoint)
	return strings.Contains(lower, "openai.azure.com") ||
		strings.Contains(lower, "cognitiveservices.azure.com")
}

// IsOpenAIEndpoint checks if the given endpoint URL is the standard OpenAI
// API endpoint. This is a pure function with no side effects.
func IsOpenAIEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	return strings.Contains(strings.ToLower(endpoint), "api.openai.com")
}

// IsLocalEndpoint checks if the given endpoint URL is a local/self-hosted
// endpoint: localhost, loopback, or common private LAN ranges. This is a
// pure function with no side effects.
func IsLocalEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	lower := strings.ToLower(endpoint)
	return strings.Contains(lower, "localhost") ||
		strings.Contains(lower, "127.0.0.1") ||
		strings.Contains(lower, "0.0.0.0") ||
		strings.Contains(lower, "192.168.") ||
		strings.Contains(lower, "://10.")
}
