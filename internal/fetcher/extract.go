package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

// extractPageText prefers readable-content extraction and falls back to
// stripping boilerplate elements when readability finds nothing.
func (f *Fetcher) extractPageText(
	ctx context.Context,
	pageURL *url.URL,
	data []byte,
) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil {
		if text := normalizeText(article.TextContent); text != "" {
			return text, nil
		}
	} else {
		f.log.WarnContext(ctx, "Readability extraction failed so fallback will be used",
			"error", err,
			"url", pageURL.String())
	}

	return extractVisibleText(bytes.NewReader(data))
}

// extractVisibleText drops elements that never carry page content and returns
// whatever text remains in the body.
func extractVisibleText(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find("script, style, img, input, nav, header, footer, aside, noscript").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		return normalizeText(doc.Text()), nil
	}

	var textBuilder strings.Builder
	root.Each(func(_ int, s *goquery.Selection) {
		fragment := strings.TrimSpace(s.Text())
		if fragment == "" {
			return
		}
		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n")
		}
		textBuilder.WriteString(fragment)
	})

	return normalizeText(textBuilder.String()), nil
}

// extractFeedText flattens an RSS/Atom/JSON feed into plain text so a feed
// URL can be summarized like any other page.
func extractFeedText(body io.Reader) (string, error) {
	parsed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse feed: %w", err)
	}

	var textBuilder strings.Builder

	if title := strings.TrimSpace(parsed.Title); title != "" {
		textBuilder.WriteString(title)
	}
	if description := strings.TrimSpace(parsed.Description); description != "" {
		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n")
		}
		textBuilder.WriteString(description)
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		var itemBuilder strings.Builder
		for _, fragment := range []string{item.Title, stripHTML(item.Description), stripHTML(item.Content)} {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			if itemBuilder.Len() > 0 {
				itemBuilder.WriteString("\n")
			}
			itemBuilder.WriteString(fragment)
		}

		if itemBuilder.Len() == 0 {
			continue
		}

		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n\n")
		}
		textBuilder.WriteString(itemBuilder.String())
	}

	return normalizeText(textBuilder.String()), nil
}

// stripHTML reduces an HTML fragment to its text. Feed descriptions are often
// HTML even when the surrounding document is XML.
func stripHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || !strings.Contains(fragment, "<") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	return doc.Text()
}

func normalizeText(text string) string {
	lines := strings.Split(text, "\n")

	var textBuilder strings.Builder
	blankRun := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blankRun++
			continue
		}

		if textBuilder.Len() > 0 {
			if blankRun > 0 {
				textBuilder.WriteString("\n\n")
			} else {
				textBuilder.WriteString("\n")
			}
		}
		blankRun = 0

		textBuilder.WriteString(strings.Join(strings.Fields(line), " "))
	}

	return textBuilder.String()
}
