package textutil

import (
	"fmt"
	"strings"

	"quill/app/models"

	"github.com/dustin/go-humanize"
)

type fieldRule struct {
	label       string
	// lengthLabel names the field in the length message; defaults to label.
	lengthLabel string
	limit       int
}

var (
	titleRule   = fieldRule{label: "Title", limit: models.MaxTitleLength}
	contentRule = fieldRule{label: "Content", limit: models.MaxContentLength}
	authorRule  = fieldRule{label: "Author", lengthLabel: "Author name", limit: models.MaxAuthorLength}
)

// Validate checks post input and returns one message per violated rule.
// The result is empty when the input is acceptable.
func Validate(title, content, author string) []string {
	messages := []string{}
	messages = append(messages, titleRule.check(title)...)
	messages = append(messages, contentRule.check(content)...)
	messages = append(messages, authorRule.check(author)...)
	return messages
}

func (r fieldRule) check(value string) []string {
	v := models.Validator()
	value = strings.TrimSpace(value)

	if err := v.Var(value, "required"); err != nil {
		return []string{fmt.Sprintf("%s is required", r.label)}
	}
	if err := v.Var(value, fmt.Sprintf("max=%d", r.limit)); err != nil {
		name := r.lengthLabel
		if name == "" {
			name = r.label
		}
		return []string{fmt.Sprintf("%s must be %s characters or less", name, humanize.Comma(int64(r.limit)))}
	}
	return nil
}
