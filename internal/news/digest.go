// ABOUTME: Human-readable digest rendering of a headline Result
// ABOUTME: Markdown text for the get_latest_news tool, HTML via goldmark for browsers

package news

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// DigestHeadlinesPerSource caps how many headlines each source contributes to a digest.
const DigestHeadlinesPerSource = 3

// FormatDigest renders r as a markdown digest. Sources without headlines are skipped.
func FormatDigest(r Result) string {
	var b strings.Builder
	b.WriteString("📰 **Latest News Headlines**\n\n")

	for _, sh := range r {
		if len(sh.Headlines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "**%s:**\n", sh.Source)
		for i, headline := range sh.Headlines {
			if i == DigestHeadlinesPerSource {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, headline)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDigestHTML converts the markdown digest to HTML. Raw HTML inside
// scraped headlines is omitted by goldmark's default renderer.
func RenderDigestHTML(r Result) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(FormatDigest(r)), &buf); err != nil {
		return "", fmt.Errorf("rendering digest: %w", err)
	}
	return buf.String(), nil
}
