package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docrender/internal/parser"
	"github.com/dgallion1/docrender/internal/present"
	"github.com/dgallion1/docrender/internal/render"
)

// Worker processes a single conversion job.
type Worker struct {
	log        *slog.Logger
	stats      *Stats
	parserOpts parser.Options
}

func NewWorker(log *slog.Logger, stats *Stats, opts parser.Options) *Worker {
	return &Worker{
		log:        log,
		stats:      stats,
		parserOpts: opts,
	}
}

// Process runs parse, render and present for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "format", job.Format)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		w.fail(log, job, "parsing", err)
		return
	}
	phaseStart := time.Now()
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(log, job, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	w.stats.Record(PhaseParse, time.Since(phaseStart))
	if ctx.Err() != nil {
		w.fail(log, job, "parsing", ctx.Err())
		return
	}

	// Phase 2: Render
	job.SetStatus(StatusRendering, "rendering")
	phaseStart = time.Now()
	units := render.Document(doc)
	w.stats.Record(PhaseRender, time.Since(phaseStart))
	job.SetCounts(len(doc), len(units), len(render.Lines(units)))
	log.Info("rendered document", "blocks", len(doc), "units", len(units))

	// Phase 3: Present
	job.SetStatus(StatusPresenting, "presenting")
	pr, err := present.ForFormat(job.Format)
	if err != nil {
		w.fail(log, job, "presenting", err)
		return
	}
	var buf bytes.Buffer
	phaseStart = time.Now()
	if err := pr.Present(&buf, units); err != nil {
		w.fail(log, job, "presenting", fmt.Errorf("present %s: %w", job.Format, err))
		return
	}
	w.stats.Record(PhasePresent, time.Since(phaseStart))

	job.SetResult(buf.Bytes(), pr.ContentType())
	w.stats.Record(PhaseTotal, time.Since(start))
	log.Info("conversion complete", "output_bytes", buf.Len(), "duration_ms", time.Since(start).Milliseconds())
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("conversion failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}
