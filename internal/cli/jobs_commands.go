package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"drive-gallery/internal/gallery"
	"drive-gallery/internal/model"
	"drive-gallery/internal/watch"
)

func newJobsCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent import jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			client, _, err := a.client()
			if err != nil {
				return err
			}
			jobs, err := client.ListJobs(cmd.Context())
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}
			return render(cmd.OutOrStdout(), format, map[string]any{"jobs": jobs}, func(w io.Writer) error {
				if len(jobs) == 0 {
					fmt.Fprintln(w, "no jobs yet")
					return nil
				}
				for _, job := range jobs {
					fmt.Fprintln(w, gallery.FormatJobLine(job))
					if job.Result != nil {
						fmt.Fprintf(w, "  %s\n", gallery.FormatJobResult(*job.Result))
					}
				}
				return nil
			})
		},
	}
	addOutputFlag(cmd, &output)

	cmd.AddCommand(newJobsShowCmd(a), newJobsResultCmd(a), newJobsWatchCmd(a))
	return cmd
}

func newJobsShowCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			client, _, err := a.client()
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get job %s: %w", args[0], err)
			}
			return render(cmd.OutOrStdout(), format, job, func(w io.Writer) error {
				printJob(w, job)
				return nil
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func printJob(w io.Writer, job model.Job) {
	fmt.Fprintf(w, "id: %s\n", job.ID)
	fmt.Fprintf(w, "status: %s\n", defaultIfEmpty(model.NormalizeStatus(job.Status), "unknown"))
	if pct, ok := job.ActiveProgress(); ok {
		fmt.Fprintf(w, "progress: %d%%\n", pct)
	}
	fmt.Fprintf(w, "created: %s\n", gallery.FormatCreated(job))
	if job.StartedAt != "" {
		fmt.Fprintf(w, "started_at: %s\n", job.StartedAt)
	}
	if job.EndedAt != "" {
		fmt.Fprintf(w, "ended_at: %s\n", job.EndedAt)
	}
	if job.Result != nil {
		fmt.Fprintf(w, "result: %s\n", gallery.FormatJobResult(*job.Result))
		if job.Result.Error != "" {
			fmt.Fprintf(w, "error: %s\n", job.Result.Error)
		}
	}
}

func newJobsResultCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "result JOB_ID",
		Short: "Show the result of a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			client, _, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.JobResult(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get result for job %s: %w", args[0], err)
			}
			return render(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
				fmt.Fprintln(w, gallery.FormatJobResult(res))
				if res.Total > 0 {
					fmt.Fprintf(w, "total: %d\n", res.Total)
				}
				if res.Message != "" {
					fmt.Fprintf(w, "message: %s\n", res.Message)
				}
				if res.Error != "" {
					fmt.Fprintf(w, "error: %s\n", res.Error)
				}
				return nil
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func newJobsWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch JOB_ID",
		Short: "Follow a job until it finishes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, s, err := a.client()
			if err != nil {
				return err
			}
			_, err = watch.Follow(cmd.Context(), client, args[0], watch.Options{
				Interval: s.JobPollInterval.Std(),
				Out:      cmd.OutOrStdout(),
				Logger:   a.log,
			})
			return err
		},
	}
}
