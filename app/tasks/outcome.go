package tasks

type Outcome string

const (
	// OutcomeProcessed means the entry was published and ledgered.
	OutcomeProcessed Outcome = "processed"
	// OutcomeSkipped means the ledger already had the entry.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDuplicate means the site already had a post for the source URL.
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeDryRun    Outcome = "dry_run"
	OutcomeFailed    Outcome = "failed"
)

type PublishedArticle struct {
	Title    string
	URL      string
	PostID   int64
	FeedName string
}

type EntryResult struct {
	Outcome Outcome
	Reason  string
	Post    *PublishedArticle
}

type FeedStats struct {
	Processed int
	Skipped   int
	Errors    int
	Published []PublishedArticle
}

func (s *FeedStats) Add(result EntryResult) {
	switch result.Outcome {
	case OutcomeProcessed, OutcomeDryRun:
		s.Processed++
	case OutcomeSkipped, OutcomeDuplicate:
		s.Skipped++
	case OutcomeFailed:
		s.Errors++
	}

	if result.Outcome == OutcomeProcessed && result.Post != nil {
		s.Published = append(s.Published, *result.Post)
	}
}

type RunStats struct {
	Feeds     int
	Processed int
	Skipped   int
	Errors    int
	Published []PublishedArticle
}

func (s *RunStats) Add(feed FeedStats) {
	s.Feeds++
	s.Processed += feed.Processed
	s.Skipped += feed.Skipped
	s.Errors += feed.Errors
	s.Published = append(s.Published, feed.Published...)
}

// Failed reports a total failure: errors occurred and nothing was processed
// or skipped. Partial failures do not fail the run.
func (s *RunStats) Failed() bool {
	return s.Processed == 0 && s.Skipped == 0 && s.Errors > 0
}
