package thumbs

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/agentstation/rollcall/pkg/catalogs"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// halves returns a w x h image, red on the left half and blue on the right.
func halves(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, red)
			} else {
				img.Set(x, y, blue)
			}
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestScaleAndCrop(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"landscape", 200, 100},
		{"portrait", 90, 300},
		{"square", 64, 64},
		{"upscale", 20, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ScaleAndCrop(halves(tt.w, tt.h), 50, draw.NearestNeighbor)
			assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
		})
	}
}

func TestScaleAndCropCentersLongSide(t *testing.T) {
	out := ScaleAndCrop(halves(200, 100), 50, draw.NearestNeighbor)

	// 200x100 scales to 100x50; the crop keeps columns 25..74.
	assert.Equal(t, red, color.RGBAModel.Convert(out.At(5, 25)))
	assert.Equal(t, blue, color.RGBAModel.Convert(out.At(45, 25)))
}

func TestPlan(t *testing.T) {
	cat := catalogs.New(
		catalogs.Entity{ID: "Hana", Images: []string{"chars/Portrait_Hana.png", "chars/Portrait_Hana_Alt.png"}},
		catalogs.Entity{ID: "Yui", Images: []string{"chars/Portrait_Yui.png"}},
	)

	jobs := Plan(cat, "/src", "/out")
	require.Len(t, jobs, 3)
	assert.Equal(t, Job{
		Entity: "Hana",
		Src:    filepath.Join("/src", "chars", "Portrait_Hana_Alt.png"),
		Dst:    filepath.Join("/out", "Portrait_Hana_Alt.png"),
	}, jobs[1])
}

func TestRunOnlyMissingOutputs(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writePNG(t, filepath.Join(src, "a.png"), halves(40, 20))
	writePNG(t, filepath.Join(src, "b.png"), halves(20, 40))

	existing := filepath.Join(out, "b.png")
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0o644))

	jobs := []Job{
		{Entity: "A", Src: filepath.Join(src, "a.png"), Dst: filepath.Join(out, "a.png")},
		{Entity: "B", Src: filepath.Join(src, "b.png"), Dst: existing},
	}

	stats, err := Run(context.Background(), jobs, WithSize(16), WithConcurrency(2))
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Pending: 1, Processed: 1}, stats)

	assert.Equal(t, image.Rect(0, 0, 16, 16), readPNG(t, filepath.Join(out, "a.png")).Bounds())
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	// Second run has nothing to do.
	stats, err = Run(context.Background(), jobs, WithSize(16))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Pending)
}

func TestRunBadSource(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("not an image"), 0o644))

	_, err := Run(context.Background(), []Job{
		{Entity: "X", Src: filepath.Join(src, "broken.png"), Dst: filepath.Join(t.TempDir(), "x.png")},
	})
	require.Error(t, err)

	_, err = Run(context.Background(), []Job{
		{Entity: "Y", Src: filepath.Join(src, "missing.png"), Dst: filepath.Join(t.TempDir(), "y.png")},
	})
	require.Error(t, err)
}
