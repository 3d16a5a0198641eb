// Package tracker drives the observable lifecycle of submitted jobs: it
// submits work to the processing service, keeps the roster fresh, and polls
// the tracked job until it reaches a terminal status.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"docrecon/constants"
	"docrecon/internal/client"
	"docrecon/internal/common"
	"docrecon/internal/entity"
)

type Tracker struct {
	client *client.Client
	store  *Store
	log    *slog.Logger

	statusEvery time.Duration
	rosterEvery time.Duration

	// poll supervisor state; the cancel handle belongs to exactly one loop.
	mu         sync.Mutex
	runCtx     context.Context
	pollCancel context.CancelFunc
	pollJobID  string
}

func New(c *client.Client, store *Store, poll common.PollConfig, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if poll.StatusInterval <= 0 {
		poll.StatusInterval = 3 * time.Second
	}
	if poll.RosterInterval <= 0 {
		poll.RosterInterval = 10 * time.Second
	}
	return &Tracker{
		client:      c,
		store:       store,
		log:         logger,
		statusEvery: poll.StatusInterval,
		rosterEvery: poll.RosterInterval,
		runCtx:      context.Background(),
	}
}

// Store exposes the owned state for consumers (export, CLI).
func (t *Tracker) Store() *Store {
	return t.store
}

// Run keeps the roster fresh until ctx is cancelled. It refreshes once
// immediately, then every roster interval. Fetch failures are logged and
// swallowed; the last-good roster stays in place.
func (t *Tracker) Run(ctx context.Context) {
	t.mu.Lock()
	t.runCtx = ctx
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.stopPollingLocked()
		t.mu.Unlock()
	}()

	if err := t.RefreshRoster(ctx); err != nil {
		t.log.Warn("tracker.roster.refresh_failed", "error", err)
	}

	ticker := time.NewTicker(t.rosterEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.RefreshRoster(ctx); err != nil {
				t.log.Warn("tracker.roster.refresh_failed", "error", err)
			}
		}
	}
}

// Submit creates a job and starts tracking it. Status is forced to processing
// locally; the authoritative status arrives with the next poll. On failure no
// snapshot is created and the error carries the service detail.
func (t *Tracker) Submit(ctx context.Context, req client.SubmitRequest) (*entity.JobSnapshot, error) {
	resp, err := t.client.SubmitJob(ctx, req)
	if err != nil {
		return nil, err
	}
	snap := &entity.JobSnapshot{
		JobID:        resp.JobID,
		Status:       constants.JobStatusProcessing,
		CreatedAt:    resp.CreatedAt,
		TotalFiles:   len(req.Files),
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		LedgerFile:   req.LedgerName,
		LedgerFormat: req.LedgerFormat,
	}
	t.store.SetCurrent(snap)
	t.log.Info("tracker.submit.ok", "job_id", snap.JobID, "files", snap.TotalFiles)
	t.ensurePolling()
	return snap, nil
}

// Track switches the tracked job to jobID, fetching a fresh snapshot first.
// Any poll loop for a previous job is torn down and a new one created when
// the new job is still running.
func (t *Tracker) Track(ctx context.Context, jobID string) (*entity.JobSnapshot, error) {
	snap, err := t.client.JobStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	t.store.SetCurrent(snap)
	if snap.Status == constants.JobStatusCompleted {
		t.fetchDerived(jobID)
	}
	t.ensurePolling()
	return snap, nil
}

// Poll fetches the tracked job's status once and applies it last-fetch-wins.
// On the first observation of completed it kicks off the two derived fetches
// without blocking on them.
func (t *Tracker) Poll(ctx context.Context, jobID string) (*entity.JobSnapshot, error) {
	snap, err := t.client.JobStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	t.store.Apply(snap)
	if snap.Status == constants.JobStatusCompleted {
		t.fetchDerived(jobID)
	}
	t.ensurePolling()
	return snap, nil
}

// RefreshRoster replaces the local roster with the service's full list.
func (t *Tracker) RefreshRoster(ctx context.Context) error {
	jobs, err := t.client.ListJobs(ctx)
	if err != nil {
		return err
	}
	t.store.ReplaceRoster(jobs)
	return nil
}

// Remove deletes jobID on the service, then drops it locally. Failures leave
// local state untouched and surface the service detail to the caller.
func (t *Tracker) Remove(ctx context.Context, jobID string) error {
	if err := t.client.DeleteJob(ctx, jobID); err != nil {
		return err
	}
	if t.store.Remove(jobID) {
		t.ensurePolling()
	}
	return nil
}

// fetchDerived launches the results fetch and the structured-extraction fetch
// as two independent requests with no ordering between their completions.
func (t *Tracker) fetchDerived(jobID string) {
	t.mu.Lock()
	ctx := t.runCtx
	t.mu.Unlock()
	go func() {
		result, err := t.client.JobResults(ctx, jobID)
		if err != nil {
			t.log.Warn("tracker.results.fetch_failed", "job_id", jobID, "error", err)
			return
		}
		t.store.SetResult(jobID, result)
	}()
	go func() {
		result, err := t.client.JobResults(ctx, jobID)
		if err != nil {
			t.log.Warn("tracker.extracted.fetch_failed", "job_id", jobID, "error", err)
			return
		}
		if result.ExtractedCSVData != nil {
			t.store.SetExtracted(jobID, result.ExtractedCSVData)
		}
	}()
}

// ensurePolling re-derives the poll timer from the declarative condition:
// a job is tracked and its status is non-terminal. Exactly one poll loop
// exists while the condition holds; it is torn down, not paused, when the
// condition stops holding or the tracked job changes.
func (t *Tracker) ensurePolling() {
	cur, ok := t.store.Current()
	want := ok && !cur.Status.IsTerminal()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !want {
		t.stopPollingLocked()
		return
	}
	if t.pollCancel != nil && t.pollJobID == cur.JobID {
		return
	}
	t.stopPollingLocked()

	ctx, cancel := context.WithCancel(t.runCtx)
	t.pollCancel = cancel
	t.pollJobID = cur.JobID
	t.log.Info("tracker.poll.start", "job_id", cur.JobID, "every", t.statusEvery)
	go t.pollLoop(ctx, cur.JobID)
}

func (t *Tracker) stopPollingLocked() {
	if t.pollCancel == nil {
		return
	}
	t.log.Info("tracker.poll.stop", "job_id", t.pollJobID)
	t.pollCancel()
	t.pollCancel = nil
	t.pollJobID = ""
}

func (t *Tracker) pollLoop(ctx context.Context, jobID string) {
	ticker := time.NewTicker(t.statusEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.Poll(ctx, jobID); err != nil {
				// Transient: keep the last-good snapshot and keep ticking.
				t.log.Warn("tracker.poll.fetch_failed", "job_id", jobID, "error", err)
			}
		}
	}
}
