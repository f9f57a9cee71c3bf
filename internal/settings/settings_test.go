package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestReadDefaultsWhenConfigMissing(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "missing.json")

	s, err := Read(cfg)
	if err != nil {
		t.Fatalf("read settings failed: %v", err)
	}
	if s.PageLimit != DefaultPageLimit {
		t.Fatalf("page limit default mismatch: got %d want %d", s.PageLimit, DefaultPageLimit)
	}
	if s.JobPollInterval.Std() != 2*time.Second {
		t.Fatalf("job poll interval default mismatch: got %s", s.JobPollInterval)
	}
	if s.ImageRefreshInterval.Std() != 5*time.Second {
		t.Fatalf("image refresh interval default mismatch: got %s", s.ImageRefreshInterval)
	}
	if _, err := os.Stat(cfg); !os.IsNotExist(err) {
		t.Fatalf("read must not create the config file, stat err=%v", err)
	}
}

func TestUpdateRoundTripsDurationsAsStrings(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "cfg", "settings.json")

	res, err := Update(UpdateOptions{
		ConfigPath: cfg,
		Settings: Settings{
			APIBaseURL:      "https://imports.example.com/",
			PageLimit:       25,
			JobPollInterval: Duration(1500 * time.Millisecond),
		},
	})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if res.Settings.APIBaseURL != "https://imports.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", res.Settings.APIBaseURL)
	}

	raw, err := os.ReadFile(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"job_poll_interval": "1.5s"`) {
		t.Fatalf("expected duration string in settings file:\n%s", raw)
	}

	s, err := Read(cfg)
	if err != nil {
		t.Fatalf("read settings failed: %v", err)
	}
	if s.PageLimit != 25 || s.JobPollInterval.Std() != 1500*time.Millisecond {
		t.Fatalf("unexpected settings after round trip: %+v", s)
	}
	if s.ImageRefreshInterval.Std() != DefaultImageRefreshInterval {
		t.Fatalf("expected unset interval to default, got %s", s.ImageRefreshInterval)
	}
}

func TestUpdateRejectsInvalidBaseURL(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "settings.json")
	_, err := Update(UpdateOptions{ConfigPath: cfg, Settings: Settings{APIBaseURL: "ftp://example.com"}})
	if err == nil {
		t.Fatal("expected invalid scheme to be rejected")
	}
	if _, statErr := os.Stat(cfg); !os.IsNotExist(statErr) {
		t.Fatal("expected nothing written for invalid settings")
	}
}

func TestNormalizeClampsPageLimit(t *testing.T) {
	if got := Normalize(Settings{PageLimit: 5000}).PageLimit; got != MaxPageLimit {
		t.Fatalf("expected page limit clamped to %d, got %d", MaxPageLimit, got)
	}
	if got := Normalize(Settings{PageLimit: -3}).PageLimit; got != DefaultPageLimit {
		t.Fatalf("expected negative page limit to default, got %d", got)
	}
}

func TestResolvePrecedence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "settings.json")
	if _, err := Update(UpdateOptions{ConfigPath: cfg, Settings: Settings{
		APIBaseURL: "http://file.example.com",
		PageLimit:  30,
	}}); err != nil {
		t.Fatal(err)
	}

	env := envMap(map[string]string{
		EnvAPIBaseURL:           "http://env.example.com",
		EnvImageRefreshInterval: "7s",
	})

	s, err := Resolve(ResolveOptions{ConfigPath: cfg, LookupEnv: env})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if s.APIBaseURL != "http://env.example.com" {
		t.Fatalf("expected env to override file, got %q", s.APIBaseURL)
	}
	if s.PageLimit != 30 {
		t.Fatalf("expected file page limit, got %d", s.PageLimit)
	}
	if s.ImageRefreshInterval.Std() != 7*time.Second {
		t.Fatalf("expected env image refresh interval, got %s", s.ImageRefreshInterval)
	}

	s, err = Resolve(ResolveOptions{ConfigPath: cfg, LookupEnv: env, APIBaseURL: "http://flag.example.com/"})
	if err != nil {
		t.Fatalf("resolve with flag failed: %v", err)
	}
	if s.APIBaseURL != "http://flag.example.com" {
		t.Fatalf("expected flag to override env, got %q", s.APIBaseURL)
	}
}

func TestResolveRejectsBadEnvValues(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "settings.json")
	cases := map[string]string{
		EnvPageLimit:       "ten",
		EnvJobPollInterval: "soon",
		EnvRequestTimeout:  "-1s",
	}
	for key, value := range cases {
		_, err := Resolve(ResolveOptions{ConfigPath: cfg, LookupEnv: envMap(map[string]string{key: value})})
		if err == nil {
			t.Fatalf("expected %s=%q to be rejected", key, value)
		}
	}
}

func TestDurationAcceptsMilliseconds(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte("2500")); err != nil {
		t.Fatalf("unmarshal milliseconds: %v", err)
	}
	if d.Std() != 2500*time.Millisecond {
		t.Fatalf("unexpected duration %s", d)
	}
}
