package model

import "time"

// RunReport summarizes one fetch run for logging and the CLI. Counts are
// reported even when some sources or ledger entries failed.
type RunReport struct {
	RunID            string    `json:"run_id"`
	RunDate          string    `json:"run_date"`
	NewCount         int       `json:"new_count"`
	DuplicateCount   int       `json:"duplicate_count"`
	SkippedCount     int       `json:"skipped_count"`
	SourcesScanned   int       `json:"sources_scanned"`
	SourcesFailed    int       `json:"sources_failed"`
	EntriesScanned   int       `json:"entries_scanned"`
	SeenFingerprints int       `json:"seen_fingerprints"`
	EntryID          string    `json:"entry_id,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	DurationMS       int64     `json:"duration_ms"`
}

// Briefing is the ranked daily digest produced by the LLM stage. Narrative is
// the model's free text; Items is a best-effort parse of it and may be empty
// when the narrative does not match the expected section layout.
type Briefing struct {
	Date        string         `json:"date"`
	Model       string         `json:"model,omitempty"`
	Narrative   string         `json:"top_articles"`
	Items       []BriefingItem `json:"items,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// BriefingItem is one ranked article extracted from the narrative.
type BriefingItem struct {
	Headline     string   `json:"headline"`
	Score        int      `json:"score"`
	Bullets      []string `json:"bullets"`
	WhyItMatters string   `json:"why_it_matters,omitempty"`
}
