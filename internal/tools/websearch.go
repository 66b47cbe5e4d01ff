// Package tools holds the research tools exposed to the LLM agent:
// web search, page fetching, and YouTube transcript retrieval. Each
// tool is a plain function with typed request/response structs,
// wrapped for the agent via function.NewFunctionTool.
package tools

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"trpc.group/trpc-go/trpc-agent-go/tool"
	"trpc.group/trpc-go/trpc-agent-go/tool/function"
)

const (
	defaultSearchBaseURL = "https://lite.duckduckgo.com/lite/"

	defaultSearchMaxResults = 5
	maxSearchMaxResults     = 20
	searchTimeout           = 30 * time.Second

	// minSearchInterval spaces out consecutive searches so the
	// provider does not start serving captchas mid-run.
	minSearchInterval = 500 * time.Millisecond
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// SearchRequest is the argument payload for the web_search tool.
type SearchRequest struct {
	Query      string `json:"query" jsonschema:"description=The search keywords or question to look for on the web,required"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum number of search results to return (default 5, max 20)"`
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse is the web_search tool result.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

// WebSearch searches the web through the DuckDuckGo Lite endpoint.
type WebSearch struct {
	http    *http.Client
	baseURL string

	mu       sync.Mutex
	lastCall time.Time
}

// NewWebSearch creates a WebSearch against the public endpoint.
func NewWebSearch() *WebSearch {
	return &WebSearch{
		http:    &http.Client{Timeout: searchTimeout},
		baseURL: defaultSearchBaseURL,
	}
}

// Tool wraps Search for registration with the agent.
func (s *WebSearch) Tool() tool.Tool {
	return function.NewFunctionTool(
		s.Search,
		function.WithName("web_search"),
		function.WithDescription("Search the web using DuckDuckGo. Returns titles, URLs and snippets from search results. Use this for general web searches to find information about any topic."),
	)
}

// Search performs a single search. Tool errors are reported in the
// response Error field so the model can react to them; a non-nil error
// is reserved for programming mistakes.
func (s *WebSearch) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	resp := SearchResponse{Query: req.Query}

	if strings.TrimSpace(req.Query) == "" {
		resp.Error = "query is required"
		return resp, nil
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultSearchMaxResults
	}
	if maxResults > maxSearchMaxResults {
		maxResults = maxSearchMaxResults
	}

	s.throttle()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"?q="+url.QueryEscape(req.Query), nil)
	if err != nil {
		return resp, fmt.Errorf("building search request: %w", err)
	}
	setBrowserHeaders(httpReq)

	httpResp, err := s.http.Do(httpReq)
	if err != nil {
		resp.Error = fmt.Sprintf("search request failed: %v", err)
		return resp, nil
	}
	defer httpResp.Body.Close() //nolint:errcheck

	if httpResp.StatusCode != http.StatusOK {
		resp.Error = fmt.Sprintf("search failed with status code %d", httpResp.StatusCode)
		return resp, nil
	}

	results, err := parseLiteResults(httpResp, maxResults)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to parse results: %v", err)
		return resp, nil
	}

	resp.Results = results
	return resp, nil
}

// throttle enforces a randomized minimum gap between searches.
func (s *WebSearch) throttle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	minGap := minSearchInterval + time.Duration(rand.IntN(1500))*time.Millisecond
	if elapsed := time.Since(s.lastCall); elapsed < minGap {
		time.Sleep(minGap - elapsed)
	}
	s.lastCall = time.Now()
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// parseLiteResults extracts results from the DuckDuckGo Lite HTML
// layout: result links carry the "result-link" class and the snippet
// sits in the following "result-snippet" table cell.
func parseLiteResults(resp *http.Response, maxResults int) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	doc.Find("a.result-link").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		result := SearchResult{
			Title: strings.TrimSpace(sel.Text()),
			URL:   cleanRedirectURL(href),
		}

		// The snippet lives in the next table row.
		if snippet := sel.Closest("tr").Next().Find("td.result-snippet"); snippet.Length() > 0 {
			result.Snippet = strings.TrimSpace(snippet.Text())
		}

		if result.URL != "" {
			results = append(results, result)
		}
		return len(results) < maxResults
	})

	return results, nil
}

// cleanRedirectURL unwraps DuckDuckGo's redirect links (uddg=) into the
// destination URL.
func cleanRedirectURL(rawURL string) string {
	idx := strings.Index(rawURL, "uddg=")
	if idx == -1 {
		return rawURL
	}
	encoded := rawURL[idx+len("uddg="):]
	if ampIdx := strings.Index(encoded, "&"); ampIdx != -1 {
		encoded = encoded[:ampIdx]
	}
	if decoded, err := url.QueryUnescape(encoded); err == nil {
		return decoded
	}
	return rawURL
}
