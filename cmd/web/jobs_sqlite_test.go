package main

import (
	"os"
	"testing"
	"time"
)

func TestSaveLoadJobs_SQLite(t *testing.T) {
	// use a temp file
	f := "test_jobs.db"
	_ = os.Remove(f)
	defer os.Remove(f)

	if err := initJobsStore("sqlite", f); err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer func() {
		jobsDB.Close()
		jobsDB = nil
		jobsStore = "json"
	}()

	now := time.Now().UTC().Truncate(time.Second)
	jobs := []PredictionJob{{ID: "j1", Input: "NM_000939.4", State: "queued", CreatedAt: now, UpdatedAt: now}}
	if err := saveJobs(f, jobs); err != nil {
		t.Fatalf("saveJobs failed: %v", err)
	}

	// upsert: same id with a new state must not duplicate the row
	jobs[0].State = "done"
	jobs[0].UpdatedAt = now.Add(time.Second)
	if err := saveJobs(f, jobs); err != nil {
		t.Fatalf("saveJobs upsert failed: %v", err)
	}

	loaded, err := loadJobs(f)
	if err != nil {
		t.Fatalf("loadJobs failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "j1" {
		t.Fatalf("unexpected loaded jobs: %#v", loaded)
	}
	if loaded[0].State != "done" {
		t.Fatalf("expected upserted state done, got %q", loaded[0].State)
	}
}
