// Package orchestrator drives a document through the chunked translation
// pipeline: split, per-chunk resume-check / translate / normalize /
// validate / persist with bounded exponential backoff, then ordered
// reassembly. Already-persisted chunks are skipped, making document
// processing idempotent and restart-safe at chunk granularity.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/hantran/internal/checkpoint"
	"github.com/valpere/hantran/internal/chunker"
	"github.com/valpere/hantran/internal/postprocess"
	"github.com/valpere/hantran/internal/translator"
	"github.com/valpere/hantran/internal/validator"
)

// State is the lifecycle position of one chunk.
type State int

const (
	StatePending State = iota
	StateSkipped
	StateInProgress
	StateRetrying
	StateAccepted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSkipped:
		return "skipped"
	case StateInProgress:
		return "in_progress"
	case StateRetrying:
		return "retrying"
	case StateAccepted:
		return "accepted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Document is one translation unit. Text is the raw source; OutputPath,
// when set, is where the reassembled translation is written.
type Document struct {
	Title      string
	Author     string
	Text       string
	OutputPath string
}

// Identity derives the deterministic document identity used for chunk file
// names and ledger keys.
func (d Document) Identity() string {
	if d.Author == "" {
		return d.Title
	}
	return d.Title + " - " + d.Author
}

// UsageLedger records per-attempt usage rows and document completion.
// Ledger writes are ancillary artifacts: failures are logged and
// swallowed, never fatal.
type UsageLedger interface {
	LogUsage(ctx context.Context, document string, chunkSeq int, service string, promptTokens, completionTokens int, cost float64) error
	FinishDocument(ctx context.Context, document string) error
}

// Config holds the orchestrator's tunables. Zero values fall back to the
// documented defaults.
type Config struct {
	MaxChars int
	Retry    RetryPolicy
	Ledger   UsageLedger // optional
	Logger   zerolog.Logger
}

// Orchestrator runs documents through the pipeline. One instance may serve
// many documents concurrently; all shared state lives in the injected
// collaborators.
type Orchestrator struct {
	trans       translator.Translator
	val         *validator.Validator
	checkpoints *checkpoint.Store
	cfg         Config
	log         zerolog.Logger
}

// New wires an orchestrator from its collaborators.
func New(trans translator.Translator, val *validator.Validator, checkpoints *checkpoint.Store, cfg Config) *Orchestrator {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = chunker.DefaultMaxChars
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Orchestrator{
		trans:       trans,
		val:         val,
		checkpoints: checkpoints,
		cfg:         cfg,
		log:         cfg.Logger,
	}
}

// Run translates one document and returns the reassembled text. When
// doc.OutputPath is set the text is also written there, and only after
// that write succeeds are the document's chunk files removed. On
// cancellation or failure every already-persisted chunk is left on disk
// for the next run to resume from.
func (o *Orchestrator) Run(ctx context.Context, doc Document) (string, error) {
	identity := doc.Identity()
	runLog := o.log.With().
		Str("document", identity).
		Str("run_id", uuid.NewString()).
		Logger()

	chunks := chunker.Split(doc.Text, o.cfg.MaxChars)
	if len(chunks) == 0 {
		runLog.Warn().Msg("document has no translatable content")
		return "", nil
	}
	runLog.Info().Int("chunks", len(chunks)).Msg("document split")

	results := make([]string, len(chunks))
	for i, c := range chunks {
		text, state, err := o.resolveChunk(ctx, identity, doc, c)
		if err != nil {
			return "", err
		}
		runLog.Debug().Int("chunk", c.Seq).Str("state", state.String()).Msg("chunk resolved")
		results[i] = text
	}

	final := reassemble(results)

	if doc.OutputPath != "" {
		if err := writeDocument(doc.OutputPath, final); err != nil {
			// A silently-lost translation is worse than a crash.
			return "", fmt.Errorf("write final document %s: %w", doc.OutputPath, err)
		}
		if err := o.checkpoints.Clear(identity, len(chunks)); err != nil {
			runLog.Warn().Err(err).Msg("chunk cleanup failed")
		}
		if o.cfg.Ledger != nil {
			if err := o.cfg.Ledger.FinishDocument(ctx, identity); err != nil {
				runLog.Warn().Err(err).Msg("ledger completion write failed")
			}
		}
		runLog.Info().Str("output", doc.OutputPath).Msg("document written")
	}

	return final, nil
}

// resolveChunk drives one chunk from pending to a terminal success state,
// or returns the fatal error that terminates the document.
func (o *Orchestrator) resolveChunk(ctx context.Context, identity string, doc Document, c chunker.Chunk) (string, State, error) {
	log := o.log.With().Str("document", identity).Int("chunk", c.Seq).Logger()

	// Resume check: a durable non-empty chunk file counts as done.
	if text, ok, err := o.checkpoints.Load(identity, c.Seq); err != nil {
		log.Warn().Err(err).Msg("resume check failed, retranslating")
	} else if ok {
		log.Info().Msg("resuming from persisted chunk")
		return text, StateSkipped, nil
	}

	var accepted string
	attempts, err := o.cfg.Retry.Do(ctx, func() error {
		res, terr := o.trans.Translate(ctx, translator.Request{Text: c.Text, Final: c.Final})
		if terr != nil {
			return terr
		}
		o.logUsage(ctx, log, identity, c.Seq, res.Usage)

		cleaned := postprocess.Clean(res.Text)
		if verr := o.val.Validate(cleaned, c.Final); verr != nil {
			return verr
		}
		accepted = cleaned
		return nil
	}, func(attempt int, ferr error, wait time.Duration) {
		log.Warn().
			Int("attempt", attempt).
			Dur("wait", wait).
			Err(ferr).
			Str("state", StateRetrying.String()).
			Msg("translation attempt failed")
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", StateFailed, err
		}
		return "", StateFailed, &ChunkExhaustedError{
			Chunk:      c.Seq,
			Attempts:   attempts,
			Title:      doc.Title,
			Author:     doc.Author,
			OutputPath: doc.OutputPath,
			LastErr:    errors.Unwrap(err),
		}
	}

	// Persist immediately: a crash after acceptance still counts as done
	// on the next run. A failed persist is logged, not fatal; the chunk
	// is simply retranslated next time.
	if perr := o.checkpoints.Save(identity, c.Seq, accepted); perr != nil {
		log.Error().Err(perr).Msg("chunk persist failed")
	}

	log.Info().Int("attempts", attempts).Msg("chunk accepted")
	return accepted, StateAccepted, nil
}

// logUsage writes one metered attempt to the ledger, best-effort.
func (o *Orchestrator) logUsage(ctx context.Context, log zerolog.Logger, identity string, seq int, u *translator.Usage) {
	if u == nil || o.cfg.Ledger == nil {
		return
	}
	if err := o.cfg.Ledger.LogUsage(ctx, identity, seq, o.trans.Name(), u.PromptTokens, u.CompletionTokens, u.Cost); err != nil {
		log.Warn().Err(err).Msg("ledger usage write failed")
	}
}

// RunAll processes independent documents in parallel on a bounded worker
// pool. Chunks within one document stay sequential. The first fatal
// document error cancels the remaining work.
func (o *Orchestrator) RunAll(ctx context.Context, docs []Document, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, doc := range docs {
		g.Go(func() error {
			_, err := o.Run(ctx, doc)
			return err
		})
	}
	return g.Wait()
}

// reassemble concatenates accepted chunk texts strictly in sequence order
// and collapses pathological blank-line runs at the boundaries.
func reassemble(results []string) string {
	return postprocess.CapBlankLines(strings.Join(results, "\n\n"))
}

// writeDocument writes the final text, creating parent directories.
func writeDocument(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
