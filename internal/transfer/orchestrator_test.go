package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/events"
	"github.com/Kadajett/musicManager/internal/state"
)

// blockingRunner holds Run open until released, so tests can observe
// the in-flight gate
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	result  domain.TransferResult
	err     error

	mu    sync.Mutex
	calls int
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  domain.TransferResult{Success: true, TransferredFiles: 2},
	}
}

func (r *blockingRunner) Run(ctx context.Context, opts domain.TransferOptions) (domain.TransferResult, error) {
	r.mu.Lock()
	r.calls++
	first := r.calls == 1
	r.mu.Unlock()
	if first {
		close(r.started)
		<-r.release
	}
	return r.result, r.err
}

func (r *blockingRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeHistory struct {
	mu      sync.Mutex
	records []state.TransferRecord
}

func (h *fakeHistory) SaveTransfer(ctx context.Context, record state.TransferRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *fakeHistory) all() []state.TransferRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]state.TransferRecord, len(h.records))
	copy(out, h.records)
	return out
}

func TestTransfer_SingleInFlight(t *testing.T) {
	runner := newBlockingRunner()
	o := NewOrchestrator(runner, nil, nil, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := o.Transfer(ctx, "/music/album", "/vol1")
		done <- err
	}()
	<-runner.started

	if !o.IsTransferring() {
		t.Error("IsTransferring() should be true while the runner is held")
	}

	// Second request is rejected, nothing is queued or dispatched
	_, err := o.Transfer(ctx, "/music/other", "/vol1")
	if !errors.Is(err, domain.ErrTransferInFlight) {
		t.Fatalf("second Transfer error = %v, want ErrTransferInFlight", err)
	}

	close(runner.release)
	if err := <-done; err != nil {
		t.Fatalf("first Transfer error = %v", err)
	}

	if runner.callCount() != 1 {
		t.Errorf("runner called %d times, want 1", runner.callCount())
	}
	if o.IsTransferring() {
		t.Error("gate should clear after completion")
	}
}

func TestTransfer_RetryAfterCompletion(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release) // never block
	o := NewOrchestrator(runner, nil, nil, nil)
	ctx := context.Background()

	if _, err := o.Transfer(ctx, "/a", "/vol1"); err != nil {
		t.Fatalf("Transfer error = %v", err)
	}
	if _, err := o.Transfer(ctx, "/b", "/vol1"); err != nil {
		t.Fatalf("second Transfer after completion error = %v", err)
	}
}

func TestTransfer_FailureClearsGateAndRecords(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	runner.err = errors.New("device removed")
	history := &fakeHistory{}
	feed := events.NewFeed[domain.TransferJob]()
	completed := false
	o := NewOrchestrator(runner, feed, history, func(ctx context.Context) { completed = true })

	ch, cancel := feed.Subscribe()
	defer cancel()

	_, err := o.Transfer(context.Background(), "/music/album", "/vol1")
	if err == nil {
		t.Fatal("expected error from failing runner")
	}

	if o.IsTransferring() {
		t.Error("failed transfer must clear the busy gate")
	}
	if completed {
		t.Error("completion callback must not fire on failure")
	}
	if o.Job().Status != domain.TransferFailed {
		t.Errorf("Job().Status = %q, want failed", o.Job().Status)
	}

	select {
	case job := <-ch:
		if job.Status != domain.TransferFailed {
			t.Errorf("published status = %q, want failed", job.Status)
		}
	case <-time.After(time.Second):
		t.Error("failure status not published to feed")
	}

	records := history.all()
	if len(records) != 1 || records[0].Status != "failed" || records[0].Error == "" {
		t.Errorf("history = %+v, want one failed record", records)
	}
}

func TestTransfer_SuccessRefreshesAndRecords(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	runner.result = domain.TransferResult{Success: true, TransferredFiles: 5, TotalBytes: 1024}
	history := &fakeHistory{}
	completed := false
	o := NewOrchestrator(runner, nil, history, func(ctx context.Context) { completed = true })

	result, err := o.Transfer(context.Background(), "/music/album", "/vol1")
	if err != nil {
		t.Fatalf("Transfer error = %v", err)
	}
	if !result.Success {
		t.Errorf("result = %+v, want success", result)
	}
	if !completed {
		t.Error("completion callback should fire after success")
	}

	records := history.all()
	if len(records) != 1 {
		t.Fatalf("history = %+v, want one record", records)
	}
	if records[0].Status != "success" || records[0].FilesTransferred != 5 || records[0].BytesTransferred != 1024 {
		t.Errorf("record = %+v", records[0])
	}
	if records[0].SourcePath != "/music/album" || records[0].TargetPath != "/vol1" {
		t.Errorf("record paths = %+v", records[0])
	}
}

func TestReport_LastWriteWins(t *testing.T) {
	feed := events.NewFeed[domain.TransferJob]()
	o := NewOrchestrator(newBlockingRunner(), feed, nil, nil)

	o.Report(domain.TransferJob{Status: domain.TransferArchiving, ProcessedFiles: 1, TotalFiles: 4})
	o.Report(domain.TransferJob{Status: domain.TransferCopying, ProcessedFiles: 2, TotalFiles: 4})

	job := o.Job()
	if job.Status != domain.TransferCopying || job.ProcessedFiles != 2 {
		t.Errorf("Job() = %+v, want the latest record", job)
	}
	// A job mid-flight keeps the gate up even without the inFlight flag
	if !o.IsTransferring() {
		t.Error("IsTransferring() should be true while processed < total")
	}

	o.Report(domain.TransferJob{Status: domain.TransferComplete, ProcessedFiles: 4, TotalFiles: 4})
	if o.IsTransferring() {
		t.Error("IsTransferring() should be false once processed == total")
	}
}
