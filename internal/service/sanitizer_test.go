package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean text passes through",
			raw:  "The tuition fee is 1200 EGP per credit hour.",
			want: "The tuition fee is 1200 EGP per credit hour.",
		},
		{
			name: "strips bracket role tags",
			raw:  "[SYSTEM] The deadline is July 15. [/INST]",
			want: "The deadline is July 15.",
		},
		{
			name: "strips chat template tokens",
			raw:  "<|im_start|>The portal resets passwords automatically.<|im_end|>",
			want: "The portal resets passwords automatically.",
		},
		{
			name: "strips markdown role headings",
			raw:  "### ASSISTANT: You need a 2.0 CGPA to register.",
			want: "You need a 2.0 CGPA to register.",
		},
		{
			name: "strips delimiter fences",
			raw:  "<<<CONTEXT>>> Submit the form online.",
			want: "Submit the form online.",
		},
		{
			name: "removes leaked section header lines",
			raw:  "CONTEXT:\nThe advising office is in building B.\nQUESTION:\n",
			want: "The advising office is in building B.",
		},
		{
			name: "trims repeated answer prefixes",
			raw:  "Answer: Answer: The application opens in August.",
			want: "The application opens in August.",
		},
		{
			name: "trims assistant prefix case insensitively",
			raw:  "ASSISTANT:  answer: Email the registrar.",
			want: "Email the registrar.",
		},
		{
			name: "collapses space runs and blank lines",
			raw:  "First   line.\t\tStill first.\n\n\n\nSecond paragraph.",
			want: "First line. Still first.\n\nSecond paragraph.",
		},
		{
			name: "keeps answer prefix inside a sentence",
			raw:  "The short answer: yes, transfers are allowed.",
			want: "The short answer: yes, transfers are allowed.",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "whitespace only input",
			raw:  "  \n\t \n ",
			want: "",
		},
		{
			name: "invalid utf8 bytes dropped",
			raw:  "fee\xff schedule",
			want: "fee schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeResponse(tt.raw))
		})
	}
}

func TestSanitizeResponseIdempotent(t *testing.T) {
	inputs := []string{
		"[SYSTEM] Answer: Answer:   The fee is fixed.\n\n\n### USER: done",
		"<|system|>CONTEXT:\nplain   text<|end|>",
		"already clean output",
		"[SY[SYSTEM]STEM] nested marker",
		"",
	}

	for _, raw := range inputs {
		once := SanitizeResponse(raw)
		twice := SanitizeResponse(once)
		assert.Equal(t, once, twice, "sanitizing twice must not change the result for %q", raw)
	}
}

func TestSanitizeResponseNestedMarkers(t *testing.T) {
	// Removing the inner tag splices the outer one together; both must go.
	got := SanitizeResponse("[SY[SYSTEM]STEM] visit the admissions office")
	assert.Equal(t, "visit the admissions office", got)
}
