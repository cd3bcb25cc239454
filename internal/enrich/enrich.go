// Package enrich runs the load, merge and save stages over the data files.
package enrich

import (
	"context"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/FocuswithJustin/strongsdef/core/index"
	"github.com/FocuswithJustin/strongsdef/core/lexicon"
	"github.com/FocuswithJustin/strongsdef/core/merge"
	"github.com/FocuswithJustin/strongsdef/core/report"
	"github.com/FocuswithJustin/strongsdef/core/sqlite"
	"github.com/FocuswithJustin/strongsdef/core/verses"
	"github.com/FocuswithJustin/strongsdef/internal/fileutil"
	"github.com/FocuswithJustin/strongsdef/internal/logging"
)

// Options configures a run.
type Options struct {
	DefinitionsPath string
	VersesPath      string
	// IndexPath, when set, receives a SQLite index of Strong's usage.
	IndexPath string
	// DryRun skips rewriting the verse file.
	DryRun bool
	// Out receives the plain-text report.
	Out io.Writer
}

// Outcome describes a completed run.
type Outcome struct {
	Definitions  int
	Verses       int
	Result       *merge.Result
	InputDigest  string
	OutputDigest string
	Written      bool
	Index        *index.Stats
}

// Unchanged reports whether the merged document is byte-identical to the
// source.
func (o *Outcome) Unchanged() bool {
	return o.InputDigest == o.OutputDigest
}

// Run loads both files, merges definitions into the verse tokens, rewrites
// the verse file and prints the summary. Any load or write failure aborts
// the run; a failed write happens after the merge, so nothing is persisted.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	rep := report.New(opts.Out)
	out := &Outcome{}

	rep.LoadingDefinitions(opts.DefinitionsPath)
	start := time.Now()
	logging.StageStarted(ctx, "load_definitions", opts.DefinitionsPath)
	defs, err := lexicon.Load(opts.DefinitionsPath)
	if err != nil {
		return nil, err
	}
	out.Definitions = defs.Len()
	logging.StageFinished(ctx, "load_definitions", time.Since(start), "count", out.Definitions)
	rep.DefinitionsLoaded(out.Definitions)

	rep.LoadingVerses(opts.VersesPath)
	start = time.Now()
	logging.StageStarted(ctx, "load_verses", opts.VersesPath)
	coll, err := verses.Load(opts.VersesPath)
	if err != nil {
		return nil, err
	}
	out.Verses = coll.Len()
	out.InputDigest = coll.SourceDigest
	logging.StageFinished(ctx, "load_verses", time.Since(start),
		"count", out.Verses,
		"compression", string(coll.Compression),
		"blake3", coll.SourceDigest,
	)
	rep.VersesLoaded(out.Verses)

	rep.Updating()
	start = time.Now()
	res, err := merge.Apply(ctx, coll, defs)
	if err != nil {
		return nil, err
	}
	out.Result = res
	logging.StageFinished(ctx, "merge", time.Since(start),
		"updated", res.Updated,
		"not_found", res.NotFound,
		"missing_unique", len(res.Missing),
	)

	rep.Saving(opts.VersesPath, opts.DryRun)
	start = time.Now()
	var data []byte
	if opts.DryRun {
		data = coll.Marshal()
	} else {
		logging.StageStarted(ctx, "save", opts.VersesPath)
		data, err = coll.Save(opts.VersesPath)
		if err != nil {
			return nil, err
		}
		out.Written = true
	}
	out.OutputDigest = fileutil.Digest(data)
	if out.Written {
		logging.FileSaved(ctx, opts.VersesPath, humanize.Bytes(uint64(len(data))), out.OutputDigest,
			"compression", string(coll.Compression),
			"unchanged", out.Unchanged(),
		)
		logging.StageFinished(ctx, "save", time.Since(start))
	}

	if opts.IndexPath != "" {
		start = time.Now()
		driver := sqlite.GetInfo()
		logging.StageStarted(ctx, "index", opts.IndexPath,
			"driver", driver.DriverName,
			"driver_type", driver.DriverType,
			"cgo", driver.IsCGO,
			"driver_package", driver.Package,
		)
		stats, err := index.Write(ctx, opts.IndexPath, defs, coll, res)
		if err != nil {
			return nil, err
		}
		out.Index = stats
		logging.StageFinished(ctx, "index", time.Since(start),
			"lexicon", stats.Lexicon,
			"missing", stats.Missing,
			"tokens", stats.Tokens,
		)
		rep.IndexWritten(opts.IndexPath)
	}

	rep.Summary(report.Summary{
		DefinitionsPath: opts.DefinitionsPath,
		Updated:         res.Updated,
		NotFound:        res.NotFound,
		Missing:         res.MissingSorted(),
		DryRun:          opts.DryRun,
		Unchanged:       out.Unchanged(),
	})
	rep.Done()
	return out, nil
}
