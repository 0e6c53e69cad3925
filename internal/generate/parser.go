package generate

import "strings"

// Section markers expected in the model response, in order.
const (
	markerTitle   = "TITLE:"
	markerMeta    = "META:"
	markerContent = "CONTENT:"
)

// Placeholders substituted when the model response omits a section.
const (
	placeholderTitle   = "Generated Blog Post"
	placeholderContent = "Content generation failed. Please try again."
)

// ParsedBlog holds the three sections extracted from a model response.
type ParsedBlog struct {
	Title           string
	MetaDescription string
	Content         string
}

// ParseGenerated scans a raw model response for TITLE:, META: and CONTENT:
// sections. The upstream contract is untrusted text: missing sections are
// replaced with placeholders, marker lines appearing mid-content still update
// their field, and everything after the CONTENT: marker accumulates into the
// body. The result always has a non-empty title and content.
func ParseGenerated(raw string) ParsedBlog {
	var (
		title     string
		meta      string
		content   strings.Builder
		inContent bool
	)

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, markerTitle):
			title = strings.TrimSpace(strings.TrimPrefix(line, markerTitle))
		case strings.HasPrefix(line, markerMeta):
			meta = strings.TrimSpace(strings.TrimPrefix(line, markerMeta))
		case strings.HasPrefix(line, markerContent):
			inContent = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, markerContent)); rest != "" {
				content.WriteString(rest)
				content.WriteString("\n")
			}
		case inContent:
			content.WriteString(line)
			content.WriteString("\n")
		}
	}

	result := ParsedBlog{
		Title:           title,
		MetaDescription: meta,
		Content:         strings.TrimSpace(content.String()),
	}
	if result.Title == "" {
		result.Title = placeholderTitle
	}
	if result.Content == "" {
		result.Content = placeholderContent
	}
	return result
}
