package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds every credential and knob the service needs. It is built
// once in main and passed to constructors; nothing reads the environment
// after Load returns.
type AppConfig struct {
	CropHealthAPIKey string
	GeminiAPIKey     string
	GoogleAPIKey     string

	// ServiceAccountJSON is the raw Earth Engine service-account credential
	// blob. EEProject is the cloud project used for compute calls; it
	// defaults to the credential's own project_id.
	ServiceAccountJSON []byte
	EEProject          string

	// HTTPTimeout applies to the shared outbound client.
	HTTPTimeout time.Duration

	// UploadDir is where /analyze stages incoming images.
	UploadDir string

	Port string
}

// Load reads configuration from environment with sensible defaults.
// Missing required keys are an error; the caller is expected to exit.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.CropHealthAPIKey = os.Getenv("CROP_HEALTH_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	if cfg.CropHealthAPIKey == "" || cfg.GeminiAPIKey == "" || cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("missing API key(s); check CROP_HEALTH_API_KEY, GEMINI_API_KEY and GOOGLE_API_KEY")
	}

	saJSON := os.Getenv("SERVICE_ACCOUNT_KEY_FILE")
	if saJSON == "" {
		return nil, fmt.Errorf("Earth Engine service account credentials not found in environment")
	}
	// Fail fast on a malformed blob and pick up the project id while at it.
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(saJSON), &sa); err != nil {
		return nil, fmt.Errorf("invalid SERVICE_ACCOUNT_KEY_FILE: %w", err)
	}
	cfg.ServiceAccountJSON = []byte(saJSON)

	cfg.EEProject = getenvDefault("EE_PROJECT", sa.ProjectID)
	if cfg.EEProject == "" {
		return nil, fmt.Errorf("no Earth Engine project: set EE_PROJECT or use credentials with a project_id")
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.UploadDir = getenvDefault("UPLOAD_DIR", "uploads")
	cfg.Port = getenvDefault("PORT", "5000")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
