package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	if err != nil || lvl != zerolog.InfoLevel {
		t.Fatalf("expected info default, got %v (err=%v)", lvl, err)
	}
	lvl, err = ParseLevel(" DEBUG ")
	if err != nil || lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v (err=%v)", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func TestConsoleHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Console(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("job_id", "abc").Msg("poll job status")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "poll job status") {
		t.Fatalf("warn line missing:\n%s", out)
	}
}

func TestFileAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gallery.log")
	logger, closer, err := File(path, "info")
	if err != nil {
		t.Fatal(err)
	}
	logger.Error().Str("op", "fetch jobs").Msg("request failed")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"op":"fetch jobs"`) {
		t.Fatalf("expected JSON field in log file:\n%s", data)
	}
}
