package rollcall

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/agentstation/rollcall/internal/report"
	"github.com/agentstation/rollcall/internal/thumbs"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence publishes build outputs.
type Persistence interface {
	// Save writes the catalog, the review catalog and the review report.
	Save(ctx context.Context, build *BuildResult) error

	// Thumbnails renders missing distribution thumbnails into dir.
	Thumbnails(ctx context.Context, cat *catalogs.Catalog, dir string) (thumbs.Stats, error)
}

// Save persists a build into the output directory.
func (c *client) Save(ctx context.Context, build *BuildResult) error {
	ctx = logging.WithOperation(ctx, "save")
	logger := logging.FromContext(ctx)

	if build == nil || build.Result == nil || build.Catalog == nil {
		return errors.NewValidationError("build", nil, "cannot be nil")
	}
	dir := c.options.outputDir
	if dir == "" {
		return errors.NewConfigError("rollcall", "no output directory configured", nil)
	}

	// Step 1: Copy leftover images for review
	copied, err := c.copyUnused(ctx, build.Unused)
	if err != nil {
		return err
	}

	// Step 2: Write catalogs
	if err := build.Catalog.Save(dir); err != nil {
		return err
	}

	// Step 3: Write the review report
	var buf bytes.Buffer
	r := report.Report{Result: build.Result, Changes: build.Changes, Unused: copied}
	if err := r.Write(&buf); err != nil {
		return errors.WrapResource("build", "report", constants.ReportFile, err)
	}
	if err := catalogs.WriteFileAtomic(filepath.Join(dir, constants.ReportFile), buf.Bytes()); err != nil {
		return errors.WrapResource("save", "report", constants.ReportFile, err)
	}

	logger.Info().
		Str("dir", dir).
		Int("placeholders", build.Placeholders()).
		Msg("Saved catalog")
	return nil
}

// copyUnused copies leftover images into the review directory. Nothing is
// copied when there are too many of them to review by hand.
func (c *client) copyUnused(ctx context.Context, refs []string) ([]string, error) {
	logger := logging.FromContext(ctx)
	dir := c.options.unusedDir
	if dir == "" || len(refs) == 0 {
		return nil, nil
	}
	if len(refs) >= constants.MaxUnusedCopies {
		logger.Warn().
			Int("unused", len(refs)).
			Int("limit", constants.MaxUnusedCopies).
			Msg("Too many unused images to copy for review")
		return nil, nil
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}

	copied := make([]string, 0, len(refs))
	written := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := filepath.Join(c.options.assetsDir, filepath.FromSlash(ref))
		dst := filepath.Join(dir, path.Base(ref))
		ok, err := copyFile(src, dst)
		if err != nil {
			return nil, err
		}
		if ok {
			written++
		}
		copied = append(copied, ref)
	}
	logger.Info().
		Int("count", written).
		Int("kept", len(copied)-written).
		Str("dir", dir).
		Msg("Copied unused images")
	return copied, nil
}

// copyFile copies src to dst unless dst already exists. It reports whether
// anything was written.
func copyFile(src, dst string) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}

	in, err := os.Open(src) //nolint:gosec // src is an inventory ref below the assets root
	if err != nil {
		return false, errors.WrapIO("read", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePermissions) //nolint:gosec // dst is built from the configured review directory
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapIO("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, errors.WrapIO("write", dst, err)
	}
	return true, errors.WrapIO("close", dst, out.Close())
}

// Thumbnails renders the images of cat into dir, skipping existing outputs.
func (c *client) Thumbnails(ctx context.Context, cat *catalogs.Catalog, dir string) (thumbs.Stats, error) {
	if cat == nil {
		return thumbs.Stats{}, errors.NewValidationError("catalog", nil, "cannot be nil")
	}
	if c.options.assetsDir == "" {
		return thumbs.Stats{}, errors.NewConfigError("rollcall", "thumbnails need an assets directory", nil)
	}
	jobs := thumbs.Plan(cat, c.options.assetsDir, dir)
	return thumbs.Run(logging.WithOperation(ctx, "thumbnails"), jobs,
		thumbs.WithSize(c.options.thumbnailSize),
		thumbs.WithConcurrency(c.options.concurrency),
	)
}
