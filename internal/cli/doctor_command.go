package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

type doctorCheck struct {
	Name    string `json:"name" yaml:"name"`
	OK      bool   `json:"ok" yaml:"ok"`
	Message string `json:"message" yaml:"message"`
}

type doctorResult struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	OK      bool          `json:"ok" yaml:"ok"`
	Checks  []doctorCheck `json:"checks" yaml:"checks"`
}

func newDoctorCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the Import Service is reachable and ready",
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

			res := doctorResult{BaseURL: client.BaseURL(), OK: true}
			add := func(c doctorCheck) {
				res.Checks = append(res.Checks, c)
				if !c.OK {
					res.OK = false
				}
			}

			health, err := client.Health(cmd.Context())
			if err != nil {
				add(doctorCheck{Name: "health", Message: err.Error()})
			} else {
				add(doctorCheck{Name: "health", OK: health.Status == "ok", Message: defaultIfEmpty(health.Status, "no status")})
			}

			ready, err := client.Ready(cmd.Context())
			if err != nil {
				add(doctorCheck{Name: "ready", Message: err.Error()})
			} else {
				add(doctorCheck{Name: "ready", OK: ready.OK, Message: defaultIfEmpty(ready.Status, "no status")})
				names := make([]string, 0, len(ready.Checks))
				for name := range ready.Checks {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					msg := "up"
					if !ready.Checks[name] {
						msg = "down"
					}
					add(doctorCheck{Name: "ready." + name, OK: ready.Checks[name], Message: msg})
				}
			}

			if err := render(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
				fmt.Fprintf(w, "service: %s\n", res.BaseURL)
				for _, c := range res.Checks {
					status := "ok"
					if !c.OK {
						status = "fail"
					}
					fmt.Fprintf(w, "%s: %s (%s)\n", c.Name, status, c.Message)
				}
				if res.OK {
					fmt.Fprintln(w, "doctor: all checks passed")
				}
				return nil
			}); err != nil {
				return err
			}
			if !res.OK {
				return errors.New("doctor checks failed")
			}
			return nil
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}
