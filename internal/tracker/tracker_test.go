package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"docrecon/constants"
	"docrecon/internal/client"
	"docrecon/internal/common"
	"docrecon/internal/entity"
)

// fakeService simulates the processing backend: a job that reports processing
// for the first statusUntil polls, then completed.
type fakeService struct {
	statusCalls  atomic.Int64
	resultCalls  atomic.Int64
	rosterCalls  atomic.Int64
	deleteCalls  atomic.Int64
	statusUntil  int64
	failSubmit   bool
	failDelete   bool
	jobID        string
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload-multiple-pdfs", func(w http.ResponseWriter, r *http.Request) {
		if f.failSubmit {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"bad request"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(entity.SubmitResponse{
			JobID: f.jobID, Status: "pending", CreatedAt: "2025-01-01T00:00:00Z",
		})
	})
	mux.HandleFunc("/job-status/", func(w http.ResponseWriter, r *http.Request) {
		n := f.statusCalls.Add(1)
		status := constants.JobStatusProcessing
		if n > f.statusUntil {
			status = constants.JobStatusCompleted
		}
		_ = json.NewEncoder(w).Encode(entity.JobSnapshot{
			JobID: f.jobID, Status: status, CreatedAt: "2025-01-01T00:00:00Z", TotalFiles: 1,
		})
	})
	mux.HandleFunc("/job-results/", func(w http.ResponseWriter, r *http.Request) {
		f.resultCalls.Add(1)
		_, _ = fmt.Fprintf(w, `{"job_id":%q,"status":"completed","total_files":1,
			"successfully_processed":1,"failed_files":0,
			"extracted_csv_data":{"csv_data":{"invoice_rows":["a,b,c,d,e,f"],"delivery_note_rows":[],"anomaly_rows":[]}}}`, f.jobID)
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		f.rosterCalls.Add(1)
		_ = json.NewEncoder(w).Encode(entity.JobsList{Jobs: []entity.JobSnapshot{
			{JobID: f.jobID, Status: constants.JobStatusProcessing, TotalFiles: 1},
		}})
	})
	mux.HandleFunc("/job/", func(w http.ResponseWriter, r *http.Request) {
		f.deleteCalls.Add(1)
		if f.failDelete {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"job is processing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	})
	return mux
}

func newTestTracker(t *testing.T, f *fakeService) (*Tracker, context.CancelFunc) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	c := client.New(client.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
	tr := New(c, NewStore(), common.PollConfig{
		StatusInterval: 5 * time.Millisecond,
		RosterInterval: time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go tr.Run(ctx)
	time.Sleep(20 * time.Millisecond) // let the initial roster refresh land
	return tr, cancel
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestPollingStopsAfterTerminalStatus(t *testing.T) {
	f := &fakeService{jobID: "job-1", statusUntil: 2}
	tr, cancel := newTestTracker(t, f)
	defer cancel()

	snap, err := tr.Submit(context.Background(), client.SubmitRequest{
		Files: []client.FileUpload{{Name: "a.pdf", Data: []byte("x")}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Status != constants.JobStatusProcessing {
		t.Fatalf("submit must force processing locally, got %s", snap.Status)
	}

	waitFor(t, func() bool {
		cur, ok := tr.Store().Current()
		return ok && cur.Status == constants.JobStatusCompleted
	}, "completed status")

	waitFor(t, func() bool {
		_, ok := tr.Store().Result()
		return ok
	}, "derived result payload")

	// Give any stray tick time to fire, then verify the poll loop is gone.
	time.Sleep(20 * time.Millisecond)
	before := f.statusCalls.Load()
	time.Sleep(60 * time.Millisecond)
	if after := f.statusCalls.Load(); after != before {
		t.Fatalf("poll requests continued after terminal status: %d -> %d", before, after)
	}

	if _, ok := tr.Store().Extracted(); !ok {
		t.Fatal("extracted payload should have arrived")
	}
}

func TestSubmitFailureLeavesRosterUnchanged(t *testing.T) {
	f := &fakeService{jobID: "job-2", statusUntil: 1, failSubmit: true}
	tr, cancel := newTestTracker(t, f)
	defer cancel()

	rosterBefore := tr.Store().Roster()
	_, err := tr.Submit(context.Background(), client.SubmitRequest{})
	if !errors.Is(err, common.ErrSubmission) {
		t.Fatalf("expected ErrSubmission, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad request") {
		t.Fatalf("detail not surfaced: %v", err)
	}
	if _, ok := tr.Store().Current(); ok {
		t.Fatal("no snapshot may be created on submit failure")
	}
	if got := tr.Store().Roster(); len(got) != len(rosterBefore) {
		t.Fatalf("roster changed: %d -> %d", len(rosterBefore), len(got))
	}
}

func TestRemoveClearsTrackedJob(t *testing.T) {
	f := &fakeService{jobID: "job-3", statusUntil: 1000}
	tr, cancel := newTestTracker(t, f)
	defer cancel()

	if _, err := tr.Track(context.Background(), "job-3"); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := tr.Remove(context.Background(), "job-3"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := tr.Store().Current(); ok {
		t.Fatal("tracked job should be cleared after removal")
	}
	for _, j := range tr.Store().Roster() {
		if j.JobID == "job-3" {
			t.Fatal("removed job still in roster")
		}
	}
}

func TestRemoveFailureLeavesStateUntouched(t *testing.T) {
	f := &fakeService{jobID: "job-4", statusUntil: 1000, failDelete: true}
	tr, cancel := newTestTracker(t, f)
	defer cancel()

	if _, err := tr.Track(context.Background(), "job-4"); err != nil {
		t.Fatalf("track: %v", err)
	}
	err := tr.Remove(context.Background(), "job-4")
	if !errors.Is(err, common.ErrDeletion) {
		t.Fatalf("expected ErrDeletion, got %v", err)
	}
	if _, ok := tr.Store().Current(); !ok {
		t.Fatal("tracked job must remain on deletion failure")
	}
}

func TestStoreApplyIgnoresForeignJob(t *testing.T) {
	s := NewStore()
	s.SetCurrent(&entity.JobSnapshot{JobID: "a", Status: constants.JobStatusProcessing})
	s.Apply(&entity.JobSnapshot{JobID: "b", Status: constants.JobStatusCompleted})
	cur, ok := s.Current()
	if !ok || cur.JobID != "a" || cur.Status != constants.JobStatusProcessing {
		t.Fatalf("stale response for another job must be ignored: %+v", cur)
	}
	s.Apply(&entity.JobSnapshot{JobID: "a", Status: constants.JobStatusCompleted})
	cur, _ = s.Current()
	if cur.Status != constants.JobStatusCompleted {
		t.Fatalf("matching snapshot must overwrite: %+v", cur)
	}
}

func TestStoreSetCurrentClearsDerivedData(t *testing.T) {
	s := NewStore()
	s.SetCurrent(&entity.JobSnapshot{JobID: "a", Status: constants.JobStatusCompleted})
	s.SetResult("a", &entity.JobResult{JobID: "a"})
	s.SetExtracted("a", &entity.ExtractedCSVData{})
	s.SetCurrent(&entity.JobSnapshot{JobID: "b", Status: constants.JobStatusProcessing})
	if _, ok := s.Result(); ok {
		t.Fatal("result from previous job leaked")
	}
	if _, ok := s.Extracted(); ok {
		t.Fatal("extracted payload from previous job leaked")
	}
	// Late responses for the old job are dropped.
	s.SetResult("a", &entity.JobResult{JobID: "a"})
	if _, ok := s.Result(); ok {
		t.Fatal("late result for an untracked job must be ignored")
	}
}
