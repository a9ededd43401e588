package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// NotFoundPolicy selects how an image without a QR code is reported.
type NotFoundPolicy string

const (
	// NotFoundFlag answers 200 with success=false and a message.
	NotFoundFlag NotFoundPolicy = "flag"
	// NotFoundStatus answers 404 with a detail.
	NotFoundStatus NotFoundPolicy = "status"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64
	MaxImageSize       int64
	ScratchDir         string
	DecodeWorkers      int
	AllowedHosts       []string
	FetchInsecureTLS   bool

	QueryNotFoundPolicy NotFoundPolicy
	BodyNotFoundPolicy  NotFoundPolicy

	AzureStorageAccount string
	AzureStorageKey     string

	LogLevel  string
	LogFormat string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials were supplied.
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8000")
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("image_fetch_timeout", 30*time.Second)
	v.SetDefault("max_request_body_size", 1024*1024) // 1MB
	v.SetDefault("max_image_size", 20*1024*1024)     // 20MB
	v.SetDefault("scratch_dir", os.TempDir())
	v.SetDefault("decode_workers", runtime.NumCPU())
	v.SetDefault("allowed_hosts", "")
	v.SetDefault("fetch_insecure_tls", false)
	v.SetDefault("query_not_found_policy", string(NotFoundFlag))
	v.SetDefault("body_not_found_policy", string(NotFoundStatus))
	v.SetDefault("azure_storage_account", "")
	v.SetDefault("azure_storage_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// LoadFromEnv builds the configuration from the environment only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Load reads an optional .env file, then the optional YAML file at path, and
// lets environment variables override both.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Host:                strings.TrimSpace(v.GetString("host")),
		Port:                strings.TrimSpace(v.GetString("port")),
		RequestTimeout:      v.GetDuration("request_timeout"),
		ImageFetchTimeout:   v.GetDuration("image_fetch_timeout"),
		MaxRequestBodySize:  v.GetInt64("max_request_body_size"),
		MaxImageSize:        v.GetInt64("max_image_size"),
		ScratchDir:          strings.TrimSpace(v.GetString("scratch_dir")),
		DecodeWorkers:       v.GetInt("decode_workers"),
		AllowedHosts:        splitList(v.GetString("allowed_hosts")),
		FetchInsecureTLS:    v.GetBool("fetch_insecure_tls"),
		QueryNotFoundPolicy: NotFoundPolicy(strings.ToLower(strings.TrimSpace(v.GetString("query_not_found_policy")))),
		BodyNotFoundPolicy:  NotFoundPolicy(strings.ToLower(strings.TrimSpace(v.GetString("body_not_found_policy")))),
		AzureStorageAccount: strings.TrimSpace(v.GetString("azure_storage_account")),
		AzureStorageKey:     strings.TrimSpace(v.GetString("azure_storage_key")),
		LogLevel:            v.GetString("log_level"),
		LogFormat:           v.GetString("log_format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be > 0 (got %d)", c.MaxImageSize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			c.RequestTimeout, c.ImageFetchTimeout)
	}
	if c.DecodeWorkers <= 0 {
		return fmt.Errorf("DECODE_WORKERS must be > 0 (got %d)", c.DecodeWorkers)
	}
	if c.ScratchDir == "" {
		return errors.New("SCRATCH_DIR must not be empty")
	}
	if !validPolicy(c.QueryNotFoundPolicy) {
		return fmt.Errorf("invalid QUERY_NOT_FOUND_POLICY: %q", c.QueryNotFoundPolicy)
	}
	if !validPolicy(c.BodyNotFoundPolicy) {
		return fmt.Errorf("invalid BODY_NOT_FOUND_POLICY: %q", c.BodyNotFoundPolicy)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return errors.New("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func validPolicy(p NotFoundPolicy) bool {
	return p == NotFoundFlag || p == NotFoundStatus
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
