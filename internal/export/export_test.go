package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"drive-gallery/internal/importapi"
	"drive-gallery/internal/importapi/importapitest"
	"drive-gallery/internal/model"
	"drive-gallery/internal/store"
)

type fixedCatalog struct {
	images   []model.Image
	maxLimit int
	calls    []int
}

func (c *fixedCatalog) ListImages(_ context.Context, limit, offset int) (model.ImagePage, error) {
	c.calls = append(c.calls, offset)
	if c.maxLimit > 0 && limit > c.maxLimit {
		limit = c.maxLimit
	}
	end := offset + limit
	if end > len(c.images) {
		end = len(c.images)
	}
	items := []model.Image{}
	if offset < end {
		items = c.images[offset:end]
	}
	return model.ImagePage{Items: items, Total: len(c.images), Limit: limit, Offset: offset}, nil
}

func catalog(n int) []model.Image {
	out := make([]model.Image, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Image{
			ID:       model.ImageID(fmt.Sprint(i + 1)),
			Name:     fmt.Sprintf("photo-%02d.jpg", i+1),
			MimeType: "image/jpeg",
			Size:     int64(i * 100),
		})
	}
	return out
}

func TestCollectWalksAllPages(t *testing.T) {
	c := &fixedCatalog{images: catalog(42)}

	got, err := Collect(context.Background(), c, 10, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, got, 42)
	assert.Equal(t, []int{0, 10, 20, 30, 40}, c.calls)
}

func TestCollectFollowsServerLimit(t *testing.T) {
	c := &fixedCatalog{images: catalog(25), maxLimit: 10}

	got, err := Collect(context.Background(), c, 50, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, got, 25)
	assert.Equal(t, []int{0, 10, 20}, c.calls)
}

func TestCollectEmptyCatalog(t *testing.T) {
	c := &fixedCatalog{}

	got, err := Collect(context.Background(), c, 10, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, c.calls, 1)
}

func TestCollectAgainstFakeService(t *testing.T) {
	srv := importapitest.New(t)
	srv.AddImages(7)
	client, err := importapi.New(importapi.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := Collect(context.Background(), client, 3, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, got, 7)
	assert.Equal(t, 3, srv.Calls("GET /images"))
}

func TestCollectStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, &fixedCatalog{images: catalog(3)}, 1, zerolog.Nop())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		name, path string
		want       Format
	}{
		{"", "out.json", FormatJSON},
		{"", "out.YML", FormatYAML},
		{"", "out.parquet", FormatParquet},
		{"yaml", "out.txt", FormatYAML},
		{"PARQUET", "", FormatParquet},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.name, tc.path)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseFormat("", "out.csv")
	assert.Error(t, err)
	_, err = ParseFormat("xml", "out.json")
	assert.Error(t, err)
}

func TestWriteJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	images := catalog(3)

	jsonPath := filepath.Join(dir, "images.json")
	require.NoError(t, Write(jsonPath, FormatJSON, images))
	var doc Document
	require.NoError(t, store.ReadJSON(jsonPath, &doc))
	assert.Equal(t, 3, doc.Total)
	assert.Equal(t, images, doc.Images)

	yamlPath := filepath.Join(dir, "images.yaml")
	require.NoError(t, Write(yamlPath, FormatYAML, images))
	raw, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var ydoc Document
	require.NoError(t, yaml.Unmarshal(raw, &ydoc))
	assert.Equal(t, "photo-02.jpg", ydoc.Images[1].Name)
}

func TestWriteParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.parquet")
	images := catalog(5)
	images[0].GoogleDriveID = "drive-1"
	require.NoError(t, Write(path, FormatParquet, images))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	pf, err := parquet.OpenFile(f, info.Size())
	require.NoError(t, err)
	assert.Equal(t, int64(5), pf.NumRows())

	reader := parquet.NewGenericReader[imageRow](pf)
	defer reader.Close()
	rows := make([]imageRow, 5)
	n, _ := reader.Read(rows)
	require.Equal(t, 5, n)
	assert.Equal(t, "1", rows[0].ID)
	assert.Equal(t, "drive-1", rows[0].GoogleDriveID)
	assert.Equal(t, int64(400), rows[4].Size)
}
