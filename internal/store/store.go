// Package store records pipeline runs so past scrapes, enrichments, and
// merges can be listed and inspected after the fact.
package store

import (
	"context"
	"time"
)

// RunKind names which pipeline stage a run executed.
type RunKind string

const (
	RunKindScrape RunKind = "scrape"
	RunKindEnrich RunKind = "enrich"
	RunKindMerge  RunKind = "merge"
)

// RunStatus tracks a run's lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded pipeline execution. Detail holds the stage's
// parameters and, once complete, its result stats, as JSON.
type Run struct {
	ID        string    `json:"id"`
	Kind      RunKind   `json:"kind"`
	Status    RunStatus `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind   RunKind   `json:"kind,omitempty"`
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines run persistence for the pipeline.
type Store interface {
	CreateRun(ctx context.Context, kind RunKind, detail any) (*Run, error)
	CompleteRun(ctx context.Context, runID string, detail any) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
