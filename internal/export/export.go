// Package export writes the full image catalog of the Import Service to a
// local file.
package export

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"drive-gallery/internal/model"
	"drive-gallery/internal/store"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

const DefaultPageSize = 100

type ImageLister interface {
	ListImages(ctx context.Context, limit, offset int) (model.ImagePage, error)
}

// ParseFormat resolves an explicit format name, falling back to the
// extension of path when name is empty.
func ParseFormat(name, path string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			return FormatJSON, nil
		case ".yaml", ".yml":
			return FormatYAML, nil
		case ".parquet":
			return FormatParquet, nil
		default:
			return "", fmt.Errorf("cannot infer export format from %q (use .json, .yaml or .parquet, or --format)", path)
		}
	}
	switch Format(name) {
	case FormatJSON, FormatYAML, FormatParquet:
		return Format(name), nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (supported: json, yaml, parquet)", name)
	}
}

// Collect walks every page of the catalog. The offset advances by the limit
// the service reports, and the walk ends at total or on an empty page.
func Collect(ctx context.Context, svc ImageLister, pageSize int, log zerolog.Logger) ([]model.Image, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	out := []model.Image{}
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := svc.ListImages(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list images at offset %d: %w", offset, err)
		}
		out = append(out, page.Items...)
		log.Debug().Int("offset", offset).Int("items", len(page.Items)).Int("total", page.Total).Msg("export page")

		if len(page.Items) == 0 {
			return out, nil
		}
		step := page.Limit
		if step <= 0 {
			step = pageSize
		}
		next := page.Offset + step
		if next <= offset {
			next = offset + len(page.Items)
		}
		offset = next
		if offset >= page.Total {
			return out, nil
		}
	}
}

// Document is the JSON/YAML export layout.
type Document struct {
	Total  int           `json:"total" yaml:"total"`
	Images []model.Image `json:"images" yaml:"images"`
}

type imageRow struct {
	ID            string `parquet:"id"`
	Name          string `parquet:"name"`
	URL           string `parquet:"url"`
	MimeType      string `parquet:"mime_type"`
	Size          int64  `parquet:"size"`
	GoogleDriveID string `parquet:"google_drive_id,optional"`
	StoragePath   string `parquet:"storage_path,optional"`
}

func Write(path string, format Format, images []model.Image) error {
	switch format {
	case FormatJSON:
		return store.WriteJSON(path, Document{Total: len(images), Images: images})
	case FormatYAML:
		return store.WriteYAML(path, Document{Total: len(images), Images: images})
	case FormatParquet:
		data, err := encodeParquet(images)
		if err != nil {
			return fmt.Errorf("encode parquet for %s: %w", path, err)
		}
		return store.WriteBytes(path, data)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func encodeParquet(images []model.Image) ([]byte, error) {
	rows := make([]imageRow, 0, len(images))
	for _, img := range images {
		rows = append(rows, imageRow{
			ID:            img.ID.String(),
			Name:          img.Name,
			URL:           img.URL,
			MimeType:      img.MimeType,
			Size:          img.Size,
			GoogleDriveID: img.GoogleDriveID,
			StoragePath:   img.StoragePath,
		})
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[imageRow](&buf)
	if _, err := w.Write(rows); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
