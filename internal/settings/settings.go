package settings

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"drive-gallery/internal/store"
)

// DefaultAPIBaseURL is the Import Service used when nothing else is
// configured. Release builds override it with
// -ldflags "-X drive-gallery/internal/settings.DefaultAPIBaseURL=...".
var DefaultAPIBaseURL = "http://localhost:8000"

const (
	DefaultPageLimit            = 10
	MaxPageLimit                = 200
	DefaultJobPollInterval      = 2 * time.Second
	DefaultImageRefreshInterval = 5 * time.Second
	DefaultRequestTimeout       = 15 * time.Second

	settingsSchemaVersion = 1

	EnvAPIBaseURL           = "DRIVE_GALLERY_API_BASE_URL"
	EnvPageLimit            = "DRIVE_GALLERY_PAGE_LIMIT"
	EnvJobPollInterval      = "DRIVE_GALLERY_JOB_POLL_INTERVAL"
	EnvImageRefreshInterval = "DRIVE_GALLERY_IMAGE_REFRESH_INTERVAL"
	EnvRequestTimeout       = "DRIVE_GALLERY_REQUEST_TIMEOUT"
	EnvLogFile              = "DRIVE_GALLERY_LOG_FILE"
)

type Settings struct {
	SchemaVersion        int      `json:"schema_version" yaml:"schema_version"`
	UpdatedAt            string   `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	APIBaseURL           string   `json:"api_base_url,omitempty" yaml:"api_base_url,omitempty"`
	PageLimit            int      `json:"page_limit,omitempty" yaml:"page_limit,omitempty"`
	JobPollInterval      Duration `json:"job_poll_interval,omitempty" yaml:"job_poll_interval,omitempty"`
	ImageRefreshInterval Duration `json:"image_refresh_interval,omitempty" yaml:"image_refresh_interval,omitempty"`
	RequestTimeout       Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
	LogFile              string   `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

type UpdateOptions struct {
	ConfigPath string
	Settings   Settings
}

type UpdateResult struct {
	ConfigPath string   `json:"config_path" yaml:"config_path"`
	Settings   Settings `json:"settings" yaml:"settings"`
}

// ResolveOptions layers overrides over the settings file. Later layers win:
// file, then environment, then APIBaseURL.
type ResolveOptions struct {
	ConfigPath string
	APIBaseURL string
	LookupEnv  func(string) (string, bool)
}

func Defaults() Settings {
	return Settings{
		SchemaVersion:        settingsSchemaVersion,
		APIBaseURL:           DefaultAPIBaseURL,
		PageLimit:            DefaultPageLimit,
		JobPollInterval:      Duration(DefaultJobPollInterval),
		ImageRefreshInterval: Duration(DefaultImageRefreshInterval),
		RequestTimeout:       Duration(DefaultRequestTimeout),
	}
}

func DefaultConfigPath() string {
	root, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(root) == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return filepath.Join(".drive-gallery", "settings.json")
		}
		root = filepath.Join(home, ".config")
	}
	return filepath.Join(root, "drive-gallery", "settings.json")
}

func normalizeConfigPath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return DefaultConfigPath()
	}
	return p
}

func Normalize(raw Settings) Settings {
	norm := raw
	norm.SchemaVersion = settingsSchemaVersion
	norm.APIBaseURL = strings.TrimRight(strings.TrimSpace(norm.APIBaseURL), "/")
	if norm.APIBaseURL == "" {
		norm.APIBaseURL = strings.TrimRight(DefaultAPIBaseURL, "/")
	}
	if norm.PageLimit <= 0 {
		norm.PageLimit = DefaultPageLimit
	}
	if norm.PageLimit > MaxPageLimit {
		norm.PageLimit = MaxPageLimit
	}
	if norm.JobPollInterval <= 0 {
		norm.JobPollInterval = Duration(DefaultJobPollInterval)
	}
	if norm.ImageRefreshInterval <= 0 {
		norm.ImageRefreshInterval = Duration(DefaultImageRefreshInterval)
	}
	if norm.RequestTimeout <= 0 {
		norm.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	norm.LogFile = strings.TrimSpace(norm.LogFile)
	return norm
}

func (s Settings) Validate() error {
	return ValidateBaseURL(s.APIBaseURL)
}

func ValidateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid api base url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api base url %q (expected http or https)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api base url %q (missing host)", raw)
	}
	return nil
}

// Read returns the saved settings, or defaults when the file does not exist yet.
func Read(configPath string) (Settings, error) {
	path := normalizeConfigPath(configPath)
	var s Settings
	if err := store.ReadJSON(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return Normalize(s), nil
}

func Update(opts UpdateOptions) (UpdateResult, error) {
	configPath := normalizeConfigPath(opts.ConfigPath)
	next := Normalize(opts.Settings)
	if err := next.Validate(); err != nil {
		return UpdateResult{}, err
	}
	next.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := store.Mkdir(filepath.Dir(configPath)); err != nil {
		return UpdateResult{}, err
	}
	if err := store.WriteJSON(configPath, next); err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{ConfigPath: configPath, Settings: next}, nil
}

func Resolve(opts ResolveOptions) (Settings, error) {
	s, err := Read(opts.ConfigPath)
	if err != nil {
		return Settings{}, err
	}
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	s, err = ApplyEnv(s, lookup)
	if err != nil {
		return Settings{}, err
	}
	if v := strings.TrimSpace(opts.APIBaseURL); v != "" {
		s.APIBaseURL = v
	}
	s = Normalize(s)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func ApplyEnv(s Settings, lookup func(string) (string, bool)) (Settings, error) {
	if v, ok := lookupTrimmed(lookup, EnvAPIBaseURL); ok {
		s.APIBaseURL = v
	}
	if v, ok := lookupTrimmed(lookup, EnvPageLimit); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Settings{}, fmt.Errorf("%s must be a positive integer, got %q", EnvPageLimit, v)
		}
		s.PageLimit = n
	}
	durations := []struct {
		key    string
		target *Duration
	}{
		{EnvJobPollInterval, &s.JobPollInterval},
		{EnvImageRefreshInterval, &s.ImageRefreshInterval},
		{EnvRequestTimeout, &s.RequestTimeout},
	}
	for _, d := range durations {
		v, ok := lookupTrimmed(lookup, d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return Settings{}, fmt.Errorf("%s must be a positive duration, got %q", d.key, v)
		}
		*d.target = Duration(parsed)
	}
	if v, ok := lookupTrimmed(lookup, EnvLogFile); ok {
		s.LogFile = v
	}
	return s, nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
