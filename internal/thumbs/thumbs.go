// Package thumbs renders square distribution thumbnails for catalog images.
//
// Only missing outputs are rendered, so a run after a catalog change touches
// new images alone. Existing outputs are never overwritten.
package thumbs

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // decode jpeg sources
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// Job renders one source image to one output path.
type Job struct {
	Entity string
	Src    string
	Dst    string
}

// Stats summarizes a run.
type Stats struct {
	Total     int
	Pending   int
	Processed int
}

type options struct {
	size        int
	concurrency int
	scaler      draw.Scaler
}

// Option configures Run.
type Option func(*options)

// WithSize sets the side length of the square output.
func WithSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithConcurrency bounds the number of images rendered at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithScaler sets the resampling kernel.
func WithScaler(s draw.Scaler) Option {
	return func(o *options) {
		o.scaler = s
	}
}

// Plan lists one job per owned image: the source under srcRoot and an output
// named after the image stem under outDir.
func Plan(cat *catalogs.Catalog, srcRoot, outDir string) []Job {
	var jobs []Job
	for _, e := range cat.Entities() {
		for _, ref := range e.Images {
			jobs = append(jobs, Job{
				Entity: e.ID,
				Src:    filepath.Join(srcRoot, filepath.FromSlash(ref)),
				Dst:    filepath.Join(outDir, assets.Stem(ref)+constants.ImageExt),
			})
		}
	}
	return jobs
}

// Run renders every job whose output does not exist yet. The first failure
// cancels the remaining jobs.
func Run(ctx context.Context, jobs []Job, opts ...Option) (Stats, error) {
	o := &options{
		size:        constants.DefaultThumbnailSize,
		concurrency: constants.DefaultConcurrency,
		scaler:      draw.CatmullRom,
	}
	for _, opt := range opts {
		opt(o)
	}

	stats := Stats{Total: len(jobs)}
	var pending []Job
	for _, job := range jobs {
		if _, err := os.Stat(job.Dst); err == nil {
			continue
		}
		pending = append(pending, job)
	}
	stats.Pending = len(pending)

	logger := logging.FromContext(ctx)
	logger.Info().
		Int("pending", stats.Pending).
		Int("total", stats.Total).
		Int("size", o.size).
		Msg("Rendering thumbnails")
	if len(pending) == 0 {
		return stats, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, job := range pending {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := render(job, o); err != nil {
				logger.Error().Err(err).
					Str("entity", job.Entity).
					Str("image", job.Src).
					Msg("Thumbnail failed")
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Processed = len(pending)
	return stats, nil
}

func render(job Job, o *options) error {
	f, err := os.Open(job.Src)
	if err != nil {
		return errors.WrapIO("open", job.Src, err)
	}
	src, _, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		return errors.WrapParse("image", job.Src, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, ScaleAndCrop(src, o.size, o.scaler)); err != nil {
		return errors.WrapIO("encode", job.Dst, err)
	}
	return catalogs.WriteFileAtomic(job.Dst, buf.Bytes())
}

// ScaleAndCrop scales img so its shorter side equals size and crops the
// longer side around the center, giving a size x size image.
func ScaleAndCrop(img image.Image, size int, scaler draw.Scaler) image.Image {
	if scaler == nil {
		scaler = draw.CatmullRom
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}

	scale := float64(size) / float64(min(w, h))
	sw := max(size, int(math.Round(float64(w)*scale)))
	sh := max(size, int(math.Round(float64(h)*scale)))

	scaled := image.NewRGBA(image.Rect(0, 0, sw, sh))
	scaler.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)

	x0 := (sw - size) / 2
	y0 := (sh - size) / 2
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Bounds(), scaled, image.Pt(x0, y0), draw.Src)
	return out
}
