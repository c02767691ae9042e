package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DateLayout is the run-date key format shared by the ledger writer and every
// downstream consumer: ISO 8601 calendar date, UTC.
const DateLayout = "2006-01-02"

// fingerprintSeparator joins title and link before hashing. Changing it (or
// the hash) invalidates every fingerprint derived from an existing ledger.
const fingerprintSeparator = "-"

// Article is a single feed item. Title and Link identify the article; the
// remaining fields are payload. Published and Summary default to empty text
// when the feed omits them.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
}

// Fingerprint returns the dedup key for a (title, link) pair: lowercase hex
// SHA-256 of the trimmed title and link joined with a fixed separator.
// It must stay byte-compatible with fingerprints computed over entries
// written by prior versions of the pipeline.
func Fingerprint(title, link string) string {
	key := strings.TrimSpace(title) + fingerprintSeparator + strings.TrimSpace(link)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns the article's dedup key.
func (a Article) Fingerprint() string {
	return Fingerprint(a.Title, a.Link)
}

// Identifiable reports whether both identity fields survive trimming. An
// article without a title or link cannot be reliably deduplicated and is
// dropped before fingerprinting.
func (a Article) Identifiable() bool {
	return strings.TrimSpace(a.Title) != "" && strings.TrimSpace(a.Link) != ""
}

// RunDate formats t as a ledger run-date key in UTC.
func RunDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
