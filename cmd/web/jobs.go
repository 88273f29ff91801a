package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// PredictionJob tracks one ESMFold submission made from the web UI.
type PredictionJob struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	State     string    `json:"state"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// jobs persistence: "json" writes the whole list to a JSON file, "sqlite"
// upserts rows into a single table. The store is selected at startup.
var (
	jobsStore = "json"
	jobsPath  = "jobs.json"
	jobsDB    *sql.DB
)

const jobsSchema = `CREATE TABLE IF NOT EXISTS jobs (
        id TEXT PRIMARY KEY,
        input TEXT,
        state TEXT,
        message TEXT,
        created_at TEXT,
        updated_at TEXT
    )`

// initJobsStore opens the configured backend. For sqlite the schema is
// created on first use.
func initJobsStore(store, path string) error {
	jobsStore = store
	jobsPath = path
	if store != "sqlite" {
		return nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	if _, err := db.Exec(jobsSchema); err != nil {
		db.Close()
		return err
	}
	jobsDB = db
	return nil
}

// saveJobs persists the full job list to the active store.
func saveJobs(path string, jobs []PredictionJob) error {
	if jobsStore == "sqlite" {
		if jobsDB == nil {
			return fmt.Errorf("sqlite jobs store not initialized")
		}
		tx, err := jobsDB.Begin()
		if err != nil {
			return err
		}
		for _, j := range jobs {
			_, err := tx.Exec(`INSERT INTO jobs (id, input, state, message, created_at, updated_at)
                VALUES (?, ?, ?, ?, ?, ?)
                ON CONFLICT(id) DO UPDATE SET input=excluded.input, state=excluded.state,
                    message=excluded.message, updated_at=excluded.updated_at`,
				j.ID, j.Input, j.State, j.Message,
				j.CreatedAt.UTC().Format(time.RFC3339), j.UpdatedAt.UTC().Format(time.RFC3339))
			if err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	}

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadJobs reads all jobs from the active store. A missing JSON file is an
// empty list, not an error.
func loadJobs(path string) ([]PredictionJob, error) {
	if jobsStore == "sqlite" {
		if jobsDB == nil {
			return nil, fmt.Errorf("sqlite jobs store not initialized")
		}
		rows, err := jobsDB.Query(`SELECT id, input, state, message, created_at, updated_at FROM jobs ORDER BY created_at`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var jobs []PredictionJob
		for rows.Next() {
			var j PredictionJob
			var created, updated string
			if err := rows.Scan(&j.ID, &j.Input, &j.State, &j.Message, &created, &updated); err != nil {
				return nil, err
			}
			j.CreatedAt, _ = time.Parse(time.RFC3339, created)
			j.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
			jobs = append(jobs, j)
		}
		return jobs, rows.Err()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var jobs []PredictionJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
