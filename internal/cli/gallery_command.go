package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"drive-gallery/internal/gallery"
	"drive-gallery/internal/logging"
)

func newGalleryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "Open the interactive gallery",
		Long: `Opens the terminal gallery: submit a folder URL, follow the import job and
page through imported images. Logs go to a file since the gallery owns the
terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGallery(cmd)
		},
	}
}

func (a *app) runGallery(cmd *cobra.Command) error {
	client, s, err := a.client()
	if err != nil {
		return err
	}

	logPath := defaultIfEmpty(s.LogFile, logging.DefaultFilePath())
	log, closer, err := logging.File(logPath, a.level("info"))
	if err != nil {
		return err
	}
	defer closer.Close()
	log.Info().Str("base_url", client.BaseURL()).Int("page_limit", s.PageLimit).Msg("gallery start")

	m := gallery.New(client, gallery.Config{
		PageLimit:            s.PageLimit,
		JobPollInterval:      s.JobPollInterval.Std(),
		ImageRefreshInterval: s.ImageRefreshInterval.Std(),
		RequestTimeout:       s.RequestTimeout.Std(),
		ServiceLabel:         client.BaseURL(),
		Logger:               log,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run gallery: %w", err)
	}
	log.Info().Msg("gallery exit")
	return nil
}
