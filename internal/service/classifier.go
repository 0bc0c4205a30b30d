package service

import (
	"strings"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
)

// CategoryKeywords binds one category label to its trigger keywords. The
// position of a row in the table is its tie-break priority.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// DefaultKeywordTable returns the admissions taxonomy triggers. General
// carries no keywords; it exists only as a corpus category.
func DefaultKeywordTable() []CategoryKeywords {
	return []CategoryKeywords{
		{Category: "Admissions", Keywords: []string{"apply", "admission", "accept", "requirements", "application", "enroll"}},
		{Category: "Fees", Keywords: []string{"fee", "tuition", "cost", "payment", "credit", "price", "pay", "refund"}},
		{Category: "Academics", Keywords: []string{"gpa", "grades", "scores", "grade", "cgpa", "dean"}},
		{Category: "Academic Advising", Keywords: []string{"advisor", "track", "course", "major", "register", "summer course"}},
		{Category: "IT & Systems", Keywords: []string{"portal", "moodle", "login", "system", "technical", "support"}},
		{Category: "Emails", Keywords: []string{"email", "gmail", "outlook", "mail", "inbox", "address", "contact email"}},
	}
}

// Classifier maps a free-text question to at most one category by counting
// keyword hits. The table is copied at construction and never mutated, so
// classification is deterministic for identical input.
type Classifier struct {
	table []CategoryKeywords
}

func NewClassifier(table []CategoryKeywords) *Classifier {
	copied := make([]CategoryKeywords, len(table))
	for i, row := range table {
		copied[i] = CategoryKeywords{
			Category: row.Category,
			Keywords: append([]string(nil), row.Keywords...),
		}
	}
	return &Classifier{table: copied}
}

// Classify returns the category with the highest keyword hit count, or ""
// when no keyword matches. Matching is a case-insensitive substring test;
// ties prefer the category earlier in the table.
func (c *Classifier) Classify(question string) string {
	lowered := strings.ToLower(question)

	best := ""
	bestScore := 0
	for _, row := range c.table {
		score := 0
		for _, keyword := range row.Keywords {
			if strings.Contains(lowered, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = row.Category
			bestScore = score
		}
	}
	return best
}

// Categories returns the full taxonomy in priority order, General last.
func (c *Classifier) Categories() []string {
	out := make([]string, 0, len(c.table)+1)
	for _, row := range c.table {
		out = append(out, row.Category)
	}
	return append(out, models.CategoryGeneral)
}
