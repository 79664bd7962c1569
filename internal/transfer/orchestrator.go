package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/events"
	"github.com/Kadajett/musicManager/internal/logger"
	"github.com/Kadajett/musicManager/internal/state"
)

// Runner executes one transfer; the engine is the real implementation
type Runner interface {
	Run(ctx context.Context, opts domain.TransferOptions) (domain.TransferResult, error)
}

// History records finished transfers; the state manager implements it
type History interface {
	SaveTransfer(ctx context.Context, record state.TransferRecord) error
}

// Orchestrator serializes transfers: at most one is in flight, every
// progress record fully replaces the previous one, and the destination
// listing is refreshed only after successful completion.
type Orchestrator struct {
	runner  Runner
	feed    *events.Feed[domain.TransferJob]
	history History
	log     logger.Logger

	// onComplete refreshes the destination store after success
	onComplete func(ctx context.Context)

	mu       sync.Mutex
	inFlight bool
	job      domain.TransferJob
}

// NewOrchestrator creates an orchestrator over runner. feed receives
// every progress record; history and onComplete may be nil.
func NewOrchestrator(runner Runner, feed *events.Feed[domain.TransferJob], history History, onComplete func(ctx context.Context)) *Orchestrator {
	return &Orchestrator{
		runner:     runner,
		feed:       feed,
		history:    history,
		onComplete: onComplete,
		log:        logger.With("component", "transfer-orchestrator"),
	}
}

// Job returns the most recent progress record
func (o *Orchestrator) Job() domain.TransferJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job
}

// IsTransferring reports whether a transfer is currently in flight.
// The gate covers the window before the first progress event arrives.
func (o *Orchestrator) IsTransferring() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight || o.job.IsTransferring()
}

// Report replaces the current progress record and publishes it.
// Wire this as the engine's Reporter.
func (o *Orchestrator) Report(job domain.TransferJob) {
	o.mu.Lock()
	o.job = job
	o.mu.Unlock()
	if o.feed != nil {
		o.feed.Publish(job)
	}
}

// Transfer runs one transfer from sourcePath into targetPath, blocking
// until it finishes. Archiving and verification are mandatory for every
// transfer issued here. A request made while another transfer is in
// flight is rejected with domain.ErrTransferInFlight and nothing is
// queued or dispatched.
func (o *Orchestrator) Transfer(ctx context.Context, sourcePath, targetPath string) (domain.TransferResult, error) {
	o.mu.Lock()
	if o.inFlight || o.job.IsTransferring() {
		o.mu.Unlock()
		o.log.Warn("transfer rejected, another is in flight",
			"source", sourcePath, "target", targetPath)
		return domain.TransferResult{}, domain.ErrTransferInFlight
	}
	o.inFlight = true
	o.mu.Unlock()

	start := time.Now()
	result, err := o.runner.Run(ctx, domain.TransferOptions{
		SourcePath:     sourcePath,
		TargetPath:     targetPath,
		CreateArchive:  true,
		VerifyTransfer: true,
	})

	o.mu.Lock()
	o.inFlight = false
	if err != nil {
		// A failed transfer clears the busy gate so a retry is a
		// fresh user-initiated call
		o.job = domain.TransferJob{Status: domain.TransferFailed}
	}
	job := o.job
	o.mu.Unlock()

	if err != nil {
		if o.feed != nil {
			o.feed.Publish(job)
		}
		o.record(ctx, sourcePath, targetPath, start, result, err)
		return result, err
	}

	o.record(ctx, sourcePath, targetPath, start, result, nil)

	if o.onComplete != nil {
		o.onComplete(ctx)
	}
	return result, nil
}

// record persists the outcome to transfer history
func (o *Orchestrator) record(ctx context.Context, sourcePath, targetPath string, start time.Time, result domain.TransferResult, err error) {
	if o.history == nil {
		return
	}

	rec := state.TransferRecord{
		SourcePath:       sourcePath,
		TargetPath:       targetPath,
		StartTime:        start,
		EndTime:          time.Now(),
		Status:           "success",
		FilesTransferred: result.TransferredFiles,
		BytesTransferred: result.TotalBytes,
	}
	if err != nil {
		rec.Status = "failed"
		rec.Error = err.Error()
	}

	if serr := o.history.SaveTransfer(ctx, rec); serr != nil {
		o.log.Warn("failed to record transfer history", "error", serr)
	}
}
