// Package textutil holds the display helpers applied to post fields:
// date formatting, truncation, search, word counts and input checks.
// Every function is total and never panics on user input.
package textutil

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"quill/app/models"
)

const (
	DefaultWordsPerMinute = 200
	DefaultPreviewWords   = 50
	Ellipsis              = "..."
	UnknownDate           = "Unknown date"
	UntitledFilename      = "untitled"
	maxFilenameLength     = 100
	displayDateLayout     = "January 02, 2006 at 03:04 PM"
)

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// FormatDate renders an ISO-8601 timestamp as "Month DD, YYYY at HH:MM AM/PM".
func FormatDate(iso string) string {
	t, err := models.ParseTimestamp(iso)
	if err != nil {
		return UnknownDate
	}
	return t.Format(displayDateLayout)
}

// Truncate shortens content to at most maxLength characters, backing up to
// the last space inside the cut so words are not split.
func Truncate(content string, maxLength int) string {
	runes := []rune(content)
	if maxLength < 0 {
		maxLength = 0
	}
	if len(runes) <= maxLength {
		return content
	}

	cut := string(runes[:maxLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + Ellipsis
}

// Search keeps the posts whose title, content or author contains query,
// ignoring case. A blank query returns posts unchanged.
func Search(posts []*models.Post, query string) []*models.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}

	matched := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Content), q) ||
			strings.Contains(strings.ToLower(p.Author), q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// CountWords counts whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateReadingTime returns whole minutes needed to read text, never less
// than one. Halves round to even.
func EstimateReadingTime(text string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	minutes := int(math.RoundToEven(float64(CountWords(text)) / float64(wordsPerMinute)))
	return max(1, minutes)
}

// ExtractPreview returns the first maxWords words of text.
func ExtractPreview(text string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultPreviewWords
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + Ellipsis
}

// SanitizeFilename makes name safe to use as a file name.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")

	if runes := []rune(name); len(runes) > maxFilenameLength {
		name = string(runes[:maxFilenameLength])
	}
	if name == "" {
		return UntitledFilename
	}
	return name
}
