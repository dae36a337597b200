package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jtang613/goelf/pkg/elffile"
	"github.com/jtang613/goelf/pkg/report"
)

func newLogger(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

type result struct {
	path string
	file *elffile.File
	err  error
}

// dump decodes every path and renders the reports in argument order. A file
// that fails to decode does not stop the others; all failures are returned
// together.
func dump(ctx context.Context, logger log.Logger, out io.Writer, paths []string, cfg config) error {
	results := inspect(ctx, logger, paths, cfg.jobs)

	var failed *multierror.Error
	r := report.NewRenderer(out, cfg.opts)
	for _, res := range results {
		if res.err != nil {
			failed = multierror.Append(failed, res.err)
			continue
		}
		if err := r.Render(report.Build(res.path, res.file, cfg.opts)); err != nil {
			failed = multierror.Append(failed, err)
		}
	}
	if err := r.Close(); err != nil {
		failed = multierror.Append(failed, err)
	}
	return failed.ErrorOrNil()
}

// inspect decodes paths with at most jobs files in flight. results[i]
// belongs to paths[i].
func inspect(ctx context.Context, logger log.Logger, paths []string, jobs int) []result {
	results := make([]result, len(paths))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = result{path: path, err: errors.Wrap(err, path)}
				return nil
			}
			results[i] = load(logger, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func load(logger log.Logger, path string) result {
	start := time.Now()
	buf, err := os.ReadFile(path)
	if err != nil {
		return result{path: path, err: errors.Wrap(err, "reading file")}
	}
	f, err := elffile.Parse(buf)
	if err != nil {
		level.Debug(logger).Log("msg", "decode failed", "path", path, "err", err)
		return result{path: path, err: errors.Wrapf(err, "decoding %s", path)}
	}

	level.Debug(logger).Log(
		"msg", "decoded",
		"path", path,
		"class", f.Identity().Class,
		"size", len(buf),
		"sections", len(f.Sections()),
		"segments", len(f.ProgramHeaders()),
		"duration", time.Since(start),
	)
	for _, w := range f.Warnings() {
		level.Warn(logger).Log("msg", w.Message, "path", path, "kind", w.Kind, "index", w.Index)
	}
	return result{path: path, file: f}
}
