package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"drive-gallery/internal/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update saved settings",
	}
	cmd.AddCommand(newSettingsShowCmd(a), newSettingsSetCmd(a))
	return cmd
}

func newSettingsShowCmd(a *app) *cobra.Command {
	var (
		output    string
		effective bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the settings file, or the effective settings with --effective",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			var s settings.Settings
			if effective {
				s, err = a.loadSettings()
			} else {
				s, err = settings.Read(a.configPath)
			}
			if err != nil {
				return err
			}
			configPath := defaultIfEmpty(a.configPath, settings.DefaultConfigPath())
			return render(cmd.OutOrStdout(), format, map[string]any{
				"config_path": configPath,
				"settings":    s,
			}, func(w io.Writer) error {
				fmt.Fprintf(w, "config: %s\n", configPath)
				printSettings(w, s)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "apply environment and flag overrides")
	addOutputFlag(cmd, &output)
	return cmd
}

func printSettings(w io.Writer, s settings.Settings) {
	fmt.Fprintf(w, "api_base_url: %s\n", s.APIBaseURL)
	fmt.Fprintf(w, "page_limit: %d\n", s.PageLimit)
	fmt.Fprintf(w, "job_poll_interval: %s\n", s.JobPollInterval)
	fmt.Fprintf(w, "image_refresh_interval: %s\n", s.ImageRefreshInterval)
	fmt.Fprintf(w, "request_timeout: %s\n", s.RequestTimeout)
	fmt.Fprintf(w, "log_file: %s\n", defaultIfEmpty(s.LogFile, "(default)"))
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var (
		baseURL        string
		pageLimit      int
		jobPoll        string
		imageRefresh   string
		requestTimeout string
		logFile        string
		output         string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update saved settings; unset flags keep their current value",
		Example: `  drive-gallery settings set --base-url https://import.example.com
  drive-gallery settings set --page-limit 25 --job-poll-interval 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			s, err := settings.Read(a.configPath)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("base-url") {
				s.APIBaseURL = strings.TrimSpace(baseURL)
				changed = true
			}
			if cmd.Flags().Changed("page-limit") {
				if pageLimit < 1 || pageLimit > settings.MaxPageLimit {
					return errors.New("--page-limit must be between 1 and " + strconv.Itoa(settings.MaxPageLimit))
				}
				s.PageLimit = pageLimit
				changed = true
			}
			durations := []struct {
				flag   string
				raw    string
				target *settings.Duration
			}{
				{"job-poll-interval", jobPoll, &s.JobPollInterval},
				{"image-refresh-interval", imageRefresh, &s.ImageRefreshInterval},
				{"request-timeout", requestTimeout, &s.RequestTimeout},
			}
			for _, d := range durations {
				if !cmd.Flags().Changed(d.flag) {
					continue
				}
				parsed, err := time.ParseDuration(strings.TrimSpace(d.raw))
				if err != nil || parsed <= 0 {
					return fmt.Errorf("--%s must be a positive duration like 2s, got %q", d.flag, d.raw)
				}
				*d.target = settings.Duration(parsed)
				changed = true
			}
			if cmd.Flags().Changed("log-file") {
				s.LogFile = strings.TrimSpace(logFile)
				changed = true
			}
			if !changed {
				return errors.New("nothing to update (see --help for settable flags)")
			}

			res, err := settings.Update(settings.UpdateOptions{ConfigPath: a.configPath, Settings: s})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
				fmt.Fprintf(w, "updated settings in %s\n", res.ConfigPath)
				printSettings(w, res.Settings)
				return nil
			})
		},
	}
	// The root --api-base-url stays a per-run override and is never saved.
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Import Service base URL to save")
	cmd.Flags().IntVar(&pageLimit, "page-limit", settings.DefaultPageLimit, "images per gallery page (1-200)")
	cmd.Flags().StringVar(&jobPoll, "job-poll-interval", "", "job status poll interval, e.g. 2s")
	cmd.Flags().StringVar(&imageRefresh, "image-refresh-interval", "", "image refresh interval while a job runs, e.g. 5s")
	cmd.Flags().StringVar(&requestTimeout, "request-timeout", "", "per-request timeout, e.g. 15s")
	cmd.Flags().StringVar(&logFile, "log-file", "", "gallery log file path (empty resets to default)")
	addOutputFlag(cmd, &output)
	return cmd
}
