package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docforge/internal/chunker"
	"github.com/dgallion1/docforge/internal/parser"
	"github.com/dgallion1/docforge/internal/plaintext"
)

// Worker processes a single import job.
type Worker struct {
	opts     parser.Options
	chunkCfg chunker.Config
	log      *slog.Logger
}

func NewWorker(opts parser.Options, chunkCfg chunker.Config, log *slog.Logger) *Worker {
	return &Worker{
		opts:     opts,
		chunkCfg: chunkCfg,
		log:      log,
	}
}

// Process runs parse and chunk for a job and records the result. It
// reports whether the job succeeded; failures are recorded on the job.
func (w *Worker) Process(ctx context.Context, job *Job) bool {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return false
	}

	imp, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return false
	}
	if job.Title != "" {
		imp.Title = job.Title
	}

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return false
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.ChunkDocument(imp.Document, imp.Title, w.chunkCfg)
	log.Info("imported document", "format", imp.Format, "blocks", len(imp.Document.Children), "chunks", len(chunks))

	job.SetResult(&Result{
		Import: imp,
		Text:   plaintext.FromDocument(imp.Document),
		Chunks: chunks,
	})
	return true
}
