package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

type scrapeInput struct {
	URL string `json:"url" jsonschema_description:"Full http(s) URL of the page to read"`
}

// ScrapeTool fetches a web page and returns its visible text, capped so a
// single page cannot flood the model context.
type ScrapeTool struct {
	client  *http.Client
	maxText int
}

func NewScrapeTool() *ScrapeTool {
	return &ScrapeTool{
		client:  &http.Client{Timeout: 30 * time.Second},
		maxText: 12000,
	}
}

func (t *ScrapeTool) Name() string { return "scrape_website" }

func (t *ScrapeTool) Description() string {
	return "Fetch a web page by URL and return its readable text content."
}

func (t *ScrapeTool) InputSchema() map[string]interface{} {
	return generateSchema[scrapeInput]()
}

func (t *ScrapeTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	pageURL := strings.TrimSpace(stringArg(args, "url"))
	if pageURL == "" {
		return "", fmt.Errorf("url is required")
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return "", fmt.Errorf("url must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}

	text, err := extractVisibleText(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	if text == "" {
		return "The page contained no readable text.", nil
	}
	if len(text) > t.maxText {
		text = text[:t.maxText] + "\n[truncated]"
	}
	return text, nil
}

// extractVisibleText drops script/style/nav subtrees and collapses the rest
// of the document to whitespace-separated text.
func extractVisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	skip := map[string]bool{
		"script": true,
		"style":  true,
		"noscript": true,
		"nav":    true,
		"header": true,
		"footer": true,
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skip[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				sb.WriteString(trimmed)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String()), nil
}
