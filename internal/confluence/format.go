package confluence

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PreviewLength is the number of characters of body content shown by FormatPage.
const PreviewLength = 200

// Placeholders rendered for absent optional fields.
const (
	placeholderUnknown   = "Unknown"
	placeholderNone      = "None"
	placeholderNoLink    = "Not available"
	placeholderNoContent = "No content"
)

// FormatPage renders a page summary with a content preview.
func FormatPage(page *Page) string {
	preview := placeholderNoContent
	if value, ok := page.StorageValue(); ok && value != "" {
		preview = Preview(value)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s (ID: %s)\n\n", page.Title, page.ID)
	fmt.Fprintf(&b, "- Status: %s\n", page.Status)
	fmt.Fprintf(&b, "- Space ID: %s\n", orDefault(page.SpaceID, placeholderUnknown))
	fmt.Fprintf(&b, "- Parent ID: %s\n", orDefault(page.ParentID, placeholderNone))
	fmt.Fprintf(&b, "- Version: %d\n", page.VersionNumber())
	fmt.Fprintf(&b, "- Created: %s\n", orDefault(page.CreatedAt, placeholderUnknown))
	fmt.Fprintf(&b, "- Web UI: %s\n", webUI(page))
	b.WriteString("\n### Content Preview\n")
	b.WriteString(preview)
	b.WriteString("\n")
	return b.String()
}

// FormatPageList renders the pages of a space as a bulleted list.
func FormatPageList(resp *PageListResponse, spaceID string) string {
	if resp == nil || len(resp.Results) == 0 {
		return fmt.Sprintf("No pages found in space %s", spaceID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Pages in space %s (%d)\n\n", spaceID, len(resp.Results))
	for i := range resp.Results {
		page := &resp.Results[i]
		fmt.Fprintf(&b, "- **%s** (ID: %s, Status: %s, Version: %d)\n",
			page.Title, page.ID, page.Status, page.VersionNumber())
		if link := page.WebUI(); link != "" {
			fmt.Fprintf(&b, "  Web UI: %s\n", link)
		}
	}

	if resp.HasMore() {
		b.WriteString("\nMore pages are available; increase the limit to see them.\n")
	}

	return b.String()
}

// FormatPageCreated renders the confirmation for a newly created page.
func FormatPageCreated(page *Page) string {
	var b strings.Builder
	b.WriteString("Page created successfully!\n\n")
	fmt.Fprintf(&b, "- Title: %s\n", page.Title)
	fmt.Fprintf(&b, "- ID: %s\n", page.ID)
	fmt.Fprintf(&b, "- Space ID: %s\n", orDefault(page.SpaceID, placeholderUnknown))
	fmt.Fprintf(&b, "- Status: %s\n", page.Status)
	fmt.Fprintf(&b, "- Web UI: %s\n", webUI(page))
	return b.String()
}

// FormatPageUpdated renders the confirmation for an updated page.
func FormatPageUpdated(page *Page) string {
	var b strings.Builder
	b.WriteString("Page updated successfully!\n\n")
	fmt.Fprintf(&b, "- Title: %s\n", page.Title)
	fmt.Fprintf(&b, "- ID: %s\n", page.ID)
	fmt.Fprintf(&b, "- New Version: %d\n", page.VersionNumber())
	fmt.Fprintf(&b, "- Status: %s\n", page.Status)
	fmt.Fprintf(&b, "- Web UI: %s\n", webUI(page))
	return b.String()
}

// Preview returns the first PreviewLength characters of content, followed by
// "..." only when content is longer than that. Counting is by rune.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLength {
		return content
	}

	n := 0
	for i := range content {
		if n == PreviewLength {
			return content[:i] + "..."
		}
		n++
	}
	return content
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func webUI(page *Page) string {
	if link := page.WebUI(); link != "" {
		return link
	}
	return placeholderNoLink
}
