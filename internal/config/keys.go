package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name     string       `json:"name"    yaml:"name"`
	Source   APIKeySource `json:"source"  yaml:"source"`
	IsSet    bool         `json:"is_set"  yaml:"is_set"`
	Masked   string       `json:"masked,omitempty" yaml:"masked,omitempty"` // e.g., "abc...xyz"
	Required bool         `json:"required" yaml:"required"`
}

// CheckAPIKeys returns the status of the API keys the providers may use.
// The FRED key is optional: without it FRED is read from its public CSV
// download.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	fred := checkKey("FRED API Key", cfg.Data.FREDAPIKey, "FRED_API_KEY", "TREASURYCURVE_DATA_FRED_API_KEY")
	return []KeyStatus{fred}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}
	if value == "" {
		status.Source = KeySourceNone
		return status
	}

	status.Source = KeySourceConfig
	for _, ev := range envVars {
		if os.Getenv(ev) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
