package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Submitter receives one upload batch. files never contains the ledger;
// ledger is empty when no workbook was dropped.
type Submitter func(ctx context.Context, files []string, ledger string) error

// Batcher coalesces watcher events into batches. A batch is cut when the
// drop folder has been quiet for the configured window.
type Batcher struct {
	log    *slog.Logger
	quiet  time.Duration
	submit Submitter
}

func NewBatcher(logger *slog.Logger, quiet time.Duration, submit Submitter) *Batcher {
	if logger == nil {
		logger = slog.Default()
	}
	if quiet <= 0 {
		quiet = 2 * time.Second
	}
	return &Batcher{log: logger, quiet: quiet, submit: submit}
}

// Run consumes watcher events until ctx is cancelled or events closes.
// Submission failures are logged and the batch is dropped; later batches
// are unaffected.
func (b *Batcher) Run(ctx context.Context, events <-chan string) {
	pending := map[string]struct{}{}
	timer := time.NewTimer(b.quiet)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	flush := func() {
		armed = false
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
			delete(pending, p)
		}
		files, ledger := splitLedger(paths)
		if len(files) == 0 && ledger == "" {
			return
		}
		b.log.Info("ingest.batch.flush", "files", len(files), "ledger", ledger)
		if err := b.submit(ctx, files, ledger); err != nil {
			b.log.Error("ingest.batch.submit_failed", "files", len(files), "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-events:
			if !ok {
				flush()
				return
			}
			pending[p] = struct{}{}
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(b.quiet)
			armed = true
		case <-timer.C:
			flush()
		}
	}
}

// splitLedger separates a dropped ledger workbook from the document files.
// When several ledgers land in one batch the lexically last one wins, which
// keeps the choice deterministic.
func splitLedger(paths []string) (files []string, ledger string) {
	sort.Strings(paths)
	for _, p := range paths {
		if IsLedger(p) {
			ledger = p
			continue
		}
		// Only documents are uploaded; stray workbooks that are not the
		// ledger are left behind.
		if strings.EqualFold(filepath.Ext(p), ".pdf") {
			files = append(files, p)
		}
	}
	return files, ledger
}

// IsLedger reports whether the path names a ledger workbook by convention:
// a file called ledger.csv or ledger.xlsx anywhere under the drop root.
func IsLedger(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == "ledger.csv" || base == "ledger.xlsx"
}

// LedgerFormat maps a ledger path to the format tag the extraction service
// expects.
func LedgerFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}
