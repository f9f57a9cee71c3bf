package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"drive-gallery/internal/importapi"
	"drive-gallery/internal/logging"
	"drive-gallery/internal/settings"
)

const defaultCLILogLevel = "warn"

// app carries the global flags and the pieces every command builds from them.
type app struct {
	configPath string
	apiBaseURL string
	logLevel   string

	lookupEnv func(string) (string, bool)
	log       zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{lookupEnv: os.LookupEnv, log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "drive-gallery",
		Short: "Import Google Drive folders and browse the imported images",
		Long: `drive-gallery talks to an Import Service that copies images out of shared
Google Drive folders.

Run it without a command in a terminal to open the interactive gallery, or use
the subcommands below from scripts.`,
		Example: `  # Open the gallery against a local service
  drive-gallery --api-base-url http://localhost:8000

  # Start an import and wait for it to finish
  drive-gallery import https://drive.google.com/drive/folders/<id> --wait

  # Dump the whole catalog
  drive-gallery images export --out images.parquet`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return a.setupConsoleLogger(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdinIsTTY() {
				return cmd.Help()
			}
			return a.runGallery(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "settings file path (default "+settings.DefaultConfigPath()+")")
	cmd.PersistentFlags().StringVar(&a.apiBaseURL, "api-base-url", "", "Import Service base URL (overrides settings and "+settings.EnvAPIBaseURL+")")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error (default from "+logging.EnvLogLevel+")")

	cmd.AddCommand(
		newGalleryCmd(a),
		newImagesCmd(a),
		newJobsCmd(a),
		newImportCmd(a),
		newDoctorCmd(a),
		newSettingsCmd(a),
	)
	return cmd
}

// level resolves --log-level, then DRIVE_GALLERY_LOG_LEVEL, then fallback.
func (a *app) level(fallback string) string {
	if v := strings.TrimSpace(a.logLevel); v != "" {
		return v
	}
	if v, ok := a.lookupEnv(logging.EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (a *app) setupConsoleLogger(w io.Writer) error {
	log, err := logging.Console(w, a.level(defaultCLILogLevel))
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) loadSettings() (settings.Settings, error) {
	s, err := settings.Resolve(settings.ResolveOptions{
		ConfigPath: a.configPath,
		APIBaseURL: a.apiBaseURL,
		LookupEnv:  a.lookupEnv,
	})
	if err != nil {
		return settings.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (a *app) client() (*importapi.Client, settings.Settings, error) {
	s, err := a.loadSettings()
	if err != nil {
		return nil, settings.Settings{}, err
	}
	c, err := importapi.New(importapi.Options{
		BaseURL: s.APIBaseURL,
		Timeout: s.RequestTimeout.Std(),
	})
	if err != nil {
		return nil, settings.Settings{}, err
	}
	a.log.Debug().Str("base_url", c.BaseURL()).Msg("import service")
	return c, s, nil
}
