package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// Import godotenv for loading .env files
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	JWT       JWTConfig       `json:"jwt"`
	Recording RecordingConfig `json:"recording"`
	Export    ExportConfig    `json:"export"`
	Security  SecurityConfig  `json:"security"`
}

type ServerConfig struct {
	Port         int           `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URI      string `json:"uri"` // Full connection URI
}

type JWTConfig struct {
	SecretKey  string        `json:"secret_key"`
	Expiration time.Duration `json:"expiration"`
}

// RecordingConfig describes the capture side: where recordings land and
// how the capture tool is invoked for each hardware input. The tool
// invocation gets the destination file path appended.
type RecordingConfig struct {
	RootPath           string   `json:"root_path"`
	CameraCommand      string   `json:"camera_command"`
	ScreenCommand      string   `json:"screen_command"`
	PostprocessingPipe []string `json:"postprocessing_pipe"`
}

// ExportConfig describes the editing-tool side: the executable, its CLI
// flags and the directories holding the project template, sequence
// preset and assembly script, plus the analyzer commands used for feed
// synchronization.
type ExportConfig struct {
	EditorPath    string `json:"editor_path"`
	EditorFlags   string `json:"editor_flags"`
	TemplatesPath string `json:"templates_path"`
	ScriptsPath   string `json:"scripts_path"`
	SyncCommand   string `json:"sync_command"`
	MarkerCommand string `json:"marker_command"`
}

type SecurityConfig struct {
	CORSOrigins []string      `json:"cors_origins"`
	RateLimit   int           `json:"rate_limit"`
	RateWindow  time.Duration `json:"rate_window"`
}

// Load builds the configuration from environment variables and .env file.
func Load() (*Config, error) {
	config := &Config{}

	if err := config.loadServerConfig(); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	config.loadDatabaseConfig()

	if err := config.loadJWTConfig(); err != nil {
		return nil, fmt.Errorf("failed to load jwt config: %w", err)
	}

	config.loadRecordingConfig()
	config.loadExportConfig()
	config.loadSecurityConfig()

	return config, nil
}

func (c *Config) loadServerConfig() error {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}

	c.Server = ServerConfig{
		Port:         port,
		Host:         getEnv("HOST", "0.0.0.0"),
		ReadTimeout:  getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  getDurationEnv("IDLE_TIMEOUT", 10*time.Second),
	}
	return nil
}

func (c *Config) loadDatabaseConfig() {
	c.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "27017"),
		Name:     getEnv("DB_NAME", "lecturecast"),
		Username: getEnv("DB_USERNAME", ""),
		Password: getEnv("DB_PASSWORD", ""),
	}

	if uri := os.Getenv("DB_URI"); uri != "" {
		c.Database.URI = uri
	} else if c.Database.Username != "" && c.Database.Password != "" {
		c.Database.URI = fmt.Sprintf("mongodb://%s:%s@%s:%s", c.Database.Username, c.Database.Password, c.Database.Host, c.Database.Port)
	} else {
		c.Database.URI = fmt.Sprintf("mongodb://%s:%s", c.Database.Host, c.Database.Port)
	}
}

func (c *Config) loadJWTConfig() error {
	secretKey := getEnv("JWT_SECRET", "")
	if secretKey == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	c.JWT = JWTConfig{
		SecretKey:  secretKey,
		Expiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
	}
	return nil
}

func (c *Config) loadRecordingConfig() {
	c.Recording = RecordingConfig{
		RootPath:           getEnv("RECORDING_ROOT", "storage/recordings"),
		CameraCommand:      getEnv("CAPTURE_CAMERA_COMMAND", "ffmpeg -y -f v4l2 -i /dev/video0"),
		ScreenCommand:      getEnv("CAPTURE_SCREEN_COMMAND", "ffmpeg -y -f x11grab -i :0.0"),
		PostprocessingPipe: getListEnv("RECORDING_PIPE", []string{"verify"}),
	}
}

func (c *Config) loadExportConfig() {
	c.Export = ExportConfig{
		EditorPath:    getEnv("EDITOR_PATH", ""),
		EditorFlags:   getEnv("EDITOR_FLAGS", ""),
		TemplatesPath: getEnv("EXPORT_TEMPLATES_PATH", "templates"),
		ScriptsPath:   getEnv("EXPORT_SCRIPTS_PATH", "scripts"),
		SyncCommand:   getEnv("SYNC_ANALYZER_COMMAND", ""),
		MarkerCommand: getEnv("MARKER_ANALYZER_COMMAND", ""),
	}
}

func (c *Config) loadSecurityConfig() {
	c.Security = SecurityConfig{
		CORSOrigins: getListEnv("CORS_ORIGINS", []string{"*"}),
		RateLimit:   getIntEnv("RATE_LIMIT", 100),
		RateWindow:  getDurationEnv("RATE_WINDOW", 1*time.Minute),
	}
}

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt secret key is required")
	}
	if c.Recording.RootPath == "" {
		return fmt.Errorf("recording root path is required")
	}
	if c.Recording.CameraCommand == "" || c.Recording.ScreenCommand == "" {
		return fmt.Errorf("capture commands for both hardware inputs are required")
	}

	return nil
}
