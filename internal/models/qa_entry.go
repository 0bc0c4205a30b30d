package models

import "time"

// CategoryGeneral is the fallback category for corpus entries that do not
// declare one. It is part of the taxonomy but has no classifier keywords.
const CategoryGeneral = "General"

// QAEntry is one pre-authored question/answer pair from the admissions
// corpus. Entries are immutable after ingestion; the query path only reads
// them.
type QAEntry struct {
	ID        int       `db:"id"`
	Category  string    `db:"category"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Embedding []float32 `db:"embedding"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

// RetrievedMatch is a QAEntry scored against a query vector. Rank is
// 0-indexed by descending similarity; equal similarities are ordered by
// entry id ascending.
type RetrievedMatch struct {
	Entry      QAEntry
	Similarity float64
	Rank       int
}
