package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"drive-gallery/internal/gallery"
	"drive-gallery/internal/model"
	"drive-gallery/internal/watch"
)

type importOutput struct {
	Ticket model.ImportTicket `json:"ticket" yaml:"ticket"`
	Job    *model.Job         `json:"job,omitempty" yaml:"job,omitempty"`
}

func newImportCmd(a *app) *cobra.Command {
	var (
		wait   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "import FOLDER_URL",
		Short: "Start importing a shared Google Drive folder",
		Example: `  drive-gallery import https://drive.google.com/drive/folders/<id>
  drive-gallery import "https://drive.google.com/open?id=<id>" --wait`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			if err := gallery.ValidateFolderURL(args[0]); err != nil {
				return err
			}
			client, s, err := a.client()
			if err != nil {
				return err
			}

			ticket, err := client.StartImport(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("start import: %w", err)
			}
			a.log.Info().Str("job_id", ticket.JobID).Str("folder_id", ticket.FolderID).Msg("import queued")
			res := importOutput{Ticket: ticket}

			var watchErr error
			if wait {
				progress := cmd.ErrOrStderr()
				if format == outputText {
					progress = cmd.OutOrStdout()
					fmt.Fprintf(progress, "started import job %s\n", ticket.JobID)
				}
				job, err := watch.Follow(cmd.Context(), client, ticket.JobID, watch.Options{
					Interval: s.JobPollInterval.Std(),
					Out:      progress,
					Logger:   a.log,
				})
				if job.ID != "" {
					res.Job = &job
				}
				watchErr = err
				if format == outputText {
					return watchErr
				}
			}

			if err := render(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
				fmt.Fprintf(w, "started import job %s", ticket.JobID)
				if ticket.FolderID != "" {
					fmt.Fprintf(w, " (folder %s)", ticket.FolderID)
				}
				fmt.Fprintln(w)
				fmt.Fprintf(w, "follow it with: drive-gallery jobs watch %s\n", ticket.JobID)
				return nil
			}); err != nil {
				return err
			}
			return watchErr
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "poll the job until it finishes")
	addOutputFlag(cmd, &output)
	return cmd
}
