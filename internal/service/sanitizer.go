package service

import (
	"regexp"
	"strings"
)

// Markup a generation model can echo back from its chat template or from the
// assembled prompt. Matching favors false positives: dropping a stray tag is
// always safer than showing it to a student.
var (
	// [SYSTEM], [/INST], [ASSISTANT] style role tags
	roleTagPattern = regexp.MustCompile(`(?i)\[/?(?:SYSTEM|USER|ASSISTANT|HUMAN|INST|CONTEXT)\]`)
	// <|system|>, <|im_start|>, <|eot_id|> style template tokens
	chatMarkerPattern = regexp.MustCompile(`<\|[a-zA-Z0-9_]+\|>`)
	// <<SYS>> and <</SYS>> blocks
	sysBlockPattern = regexp.MustCompile(`<</?SYS>>`)
	// ### SYSTEM / ## Assistant: markdown role headings
	roleHeadingPattern = regexp.MustCompile(`(?i)#{2,}\s*(?:SYSTEM|USER|ASSISTANT|HUMAN|INSTRUCTIONS?)\b:?`)
	// <<<...>>> delimiter fences
	delimiterPattern = regexp.MustCompile(`<<<[^>]*>>>`)
	// prompt section headers leaked into the answer on their own line
	sectionHeaderPattern = regexp.MustCompile(`(?im)^[ \t]*(?:context|question|answer|previous conversation)[ \t]*:[ \t]*$\n?`)
	// repeated "Answer:" / "Assistant:" boilerplate at the very start
	leadingRolePattern = regexp.MustCompile(`(?i)^(?:\s*(?:answer|assistant)\s*:\s*)+`)

	spaceRunPattern = regexp.MustCompile(`[ \t]{2,}`)
	lineTailPattern = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

var markerPatterns = []*regexp.Regexp{
	roleTagPattern,
	chatMarkerPattern,
	sysBlockPattern,
	roleHeadingPattern,
	delimiterPattern,
	sectionHeaderPattern,
}

// SanitizeResponse strips prompt markup the model echoed into its answer and
// normalizes whitespace. It accepts any input and never fails; applying it to
// its own output returns the same string.
func SanitizeResponse(raw string) string {
	text := sanitizeUTF8(raw)

	// Removing one marker can splice the surrounding bytes into another, so
	// strip until a full pass removes nothing.
	for {
		next := text
		for _, pattern := range markerPatterns {
			next = pattern.ReplaceAllString(next, "")
		}
		if next == text {
			break
		}
		text = next
	}

	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = lineTailPattern.ReplaceAllString(text, "")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	text = leadingRolePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
