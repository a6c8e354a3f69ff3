package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// searchResult is a single hit from the DuckDuckGo HTML interface.
type searchResult struct {
	Title   string
	URL     string
	Snippet string
}

type webSearchInput struct {
	Query string `json:"query" jsonschema_description:"The search query"`
}

// WebSearchTool searches the web through the DuckDuckGo HTML endpoint, which
// needs no API key.
type WebSearchTool struct {
	client *http.Client
	// restrictSite, when set, appends a site: filter to every query.
	restrictSite string
	maxResults   int
}

func NewWebSearchTool() *WebSearchTool {
	return &WebSearchTool{
		client:     &http.Client{Timeout: 30 * time.Second},
		maxResults: 8,
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web for up-to-date information. Returns titles, URLs and snippets."
}

func (t *WebSearchTool) InputSchema() map[string]interface{} {
	return generateSchema[webSearchInput]()
}

func (t *WebSearchTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return "", fmt.Errorf("query is required")
	}
	if t.restrictSite != "" {
		query = query + " site:" + t.restrictSite
	}

	results, err := t.search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return "No results found for: " + query, nil
	}

	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s\n%s\n", i+1, r.Title, r.URL))
		if r.Snippet != "" {
			sb.WriteString(r.Snippet + "\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func (t *WebSearchTool) search(ctx context.Context, query string) ([]searchResult, error) {
	searchURL := fmt.Sprintf("https://html.duckduckgo.com/html/?q=%s", url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from search endpoint", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return t.parseResults(string(body))
}

// parseResults walks the DuckDuckGo HTML, which marks hits with
// class="result results_links ...".
func (t *WebSearchTool) parseResults(htmlContent string) ([]searchResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var results []searchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= t.maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			for _, attr := range n.Attr {
				if attr.Key == "class" && strings.Contains(attr.Val, "results_links") {
					r := extractSearchResult(n)
					if r.URL != "" && r.Title != "" {
						results = append(results, r)
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

func extractSearchResult(n *html.Node) searchResult {
	var result searchResult

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "class" {
					continue
				}
				if strings.Contains(attr.Val, "result__a") {
					result.URL = attrValue(n, "href")
					result.Title = textContent(n)
				} else if strings.Contains(attr.Val, "result__snippet") {
					result.Snippet = textContent(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)

	// Unwrap DuckDuckGo redirect links.
	if strings.HasPrefix(result.URL, "//duckduckgo.com/l/?uddg=") {
		if decoded, err := url.QueryUnescape(strings.TrimPrefix(result.URL, "//duckduckgo.com/l/?uddg=")); err == nil {
			if idx := strings.Index(decoded, "&"); idx > 0 {
				decoded = decoded[:idx]
			}
			result.URL = decoded
		}
	}
	return result
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
