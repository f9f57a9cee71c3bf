package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"drive-gallery/internal/export"
	"drive-gallery/internal/gallery"
	"drive-gallery/internal/model"
	"drive-gallery/internal/settings"
)

func newImagesCmd(a *app) *cobra.Command {
	var (
		limit  int
		offset int
		output string
	)

	cmd := &cobra.Command{
		Use:   "images",
		Short: "List one page of imported images",
		Example: `  drive-gallery images --limit 20 --offset 40
  drive-gallery images -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			if offset < 0 {
				return errors.New("--offset must be >= 0")
			}
			client, s, err := a.client()
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = s.PageLimit
			}
			if limit < 1 || limit > settings.MaxPageLimit {
				return fmt.Errorf("--limit must be between 1 and %d", settings.MaxPageLimit)
			}

			page, err := client.ListImages(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("list images: %w", err)
			}
			return render(cmd.OutOrStdout(), format, page, func(w io.Writer) error {
				return printImagePage(w, page)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from settings)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of images to skip")
	addOutputFlag(cmd, &output)

	cmd.AddCommand(newImagesExportCmd(a))
	return cmd
}

func printImagePage(w io.Writer, page model.ImagePage) error {
	fmt.Fprintf(w, "Total Images: %d\n", page.Total)
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "no images on this page")
		return nil
	}
	cur, pages := gallery.PageNumber(page.Offset, page.Limit, page.Total)
	fmt.Fprintf(w, "page %d/%d (offset %d, limit %d)\n", cur, pages, page.Offset, page.Limit)
	for _, img := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s · %d bytes (%s)", img.ID, img.Name, defaultIfEmpty(img.MimeType, "unknown"), img.Size, gallery.FormatBytesIEC(img.Size))
		if strings.TrimSpace(img.URL) != "" {
			fmt.Fprintf(w, "\t%s", img.URL)
		}
		fmt.Fprintln(w)
	}
	if gallery.CanNext(page.Offset, page.Limit, page.Total) {
		fmt.Fprintf(w, "next: --offset %d\n", gallery.NextOffset(page.Offset, page.Limit))
	}
	return nil
}

func newImagesExportCmd(a *app) *cobra.Command {
	var (
		out      string
		format   string
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every imported image record to a JSON, YAML or Parquet file",
		Example: `  drive-gallery images export --out images.json
  drive-gallery images export --out catalog.parquet --page-size 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(out)
			if path == "" {
				return errors.New("--out is required")
			}
			f, err := export.ParseFormat(format, path)
			if err != nil {
				return err
			}
			if pageSize < 1 || pageSize > settings.MaxPageLimit {
				return fmt.Errorf("--page-size must be between 1 and %d", settings.MaxPageLimit)
			}
			client, _, err := a.client()
			if err != nil {
				return err
			}

			images, err := export.Collect(cmd.Context(), client, pageSize, a.log)
			if err != nil {
				return fmt.Errorf("collect images: %w", err)
			}
			if err := export.Write(path, f, images); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			a.log.Info().Str("path", path).Int("images", len(images)).Str("format", string(f)).Msg("export written")
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d images to %s (%s)\n", len(images), path, f)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (required)")
	cmd.Flags().StringVar(&format, "format", "", "json|yaml|parquet (default from --out extension)")
	cmd.Flags().IntVar(&pageSize, "page-size", export.DefaultPageSize, "images requested per page")
	return cmd
}
