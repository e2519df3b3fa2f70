package database

import (
	"time"
)

// Record is one ledger row: a logical entry that has been published.
type Record struct {
	ID          int64
	EntryKey    string
	FeedURL     string
	EntryTitle  string
	EntryLink   string
	PostID      *int64
	PostURL     *string
	ProcessedAt time.Time
}

type MarkParams struct {
	EntryKey   string
	FeedURL    string
	EntryTitle string
	EntryLink  string
	PostID     *int64
	PostURL    *string
}

type FeedCount struct {
	FeedURL string
	Count   int
}
