package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"trpc.group/trpc-go/trpc-agent-go/tool"
	"trpc.group/trpc-go/trpc-agent-go/tool/function"
)

const (
	fetchTimeout = 30 * time.Second

	// maxFetchBytes bounds how much of a page is read (5MB).
	maxFetchBytes = int64(5 * 1024 * 1024)
)

// FetchRequest is the argument payload for the fetch_page tool.
type FetchRequest struct {
	URL    string `json:"url" jsonschema:"description=The URL to fetch content from. Must start with http:// or https://,required"`
	Format string `json:"format,omitempty" jsonschema:"description=The format to return the content in (text or markdown). Default is markdown.,enum=text,enum=markdown"`
}

// FetchResponse is the fetch_page tool result.
type FetchResponse struct {
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PageFetcher downloads a web page and converts it to readable text or
// markdown for the model.
type PageFetcher struct {
	http *http.Client
}

// NewPageFetcher creates a PageFetcher with the default timeout.
func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		http: &http.Client{Timeout: fetchTimeout},
	}
}

// Tool wraps Fetch for registration with the agent.
func (f *PageFetcher) Tool() tool.Tool {
	return function.NewFunctionTool(
		f.Fetch,
		function.WithName("fetch_page"),
		function.WithDescription("Fetch content from a URL and convert it to readable text or markdown. Use this to read the full content of a page found via web_search."),
	)
}

// Fetch retrieves the page. Like the other tools, operational failures
// land in the response Error field.
func (f *PageFetcher) Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error) {
	resp := FetchResponse{URL: req.URL}

	if req.URL == "" {
		resp.Error = "url is required"
		return resp, nil
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		resp.Error = "url must start with http:// or https://"
		return resp, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return resp, fmt.Errorf("building fetch request: %w", err)
	}
	setBrowserHeaders(httpReq)

	httpResp, err := f.http.Do(httpReq)
	if err != nil {
		resp.Error = fmt.Sprintf("fetch failed: %v", err)
		return resp, nil
	}
	defer httpResp.Body.Close() //nolint:errcheck

	if httpResp.StatusCode != http.StatusOK {
		resp.Error = fmt.Sprintf("fetch failed with status code %d", httpResp.StatusCode)
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxFetchBytes))
	if err != nil {
		resp.Error = fmt.Sprintf("failed to read response: %v", err)
		return resp, nil
	}

	contentType := httpResp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "html") {
		// Non-HTML content (plain text, JSON, CSV) passes through as-is.
		resp.Content = string(body)
		return resp, nil
	}

	content, err := renderHTML(string(body), req.Format)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to convert page: %v", err)
		return resp, nil
	}

	resp.Content = content
	return resp, nil
}

func renderHTML(rawHTML, format string) (string, error) {
	if strings.ToLower(format) == "text" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
		if err != nil {
			return "", err
		}
		doc.Find("script, style, noscript").Remove()
		return collapseBlankLines(doc.Text()), nil
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(rawHTML)
	if err != nil {
		return "", err
	}
	return markdown, nil
}

// collapseBlankLines trims each line and drops runs of empty lines left
// over from HTML layout tables.
func collapseBlankLines(text string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
