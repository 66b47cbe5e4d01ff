package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const liteResultsHTML = `<html><body><table>
<tr><td><a class="result-link" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fone&rut=abc">First Result</a></td></tr>
<tr><td class="result-snippet">Snippet for the first result.</td></tr>
<tr><td><a class="result-link" href="https://example.com/two">Second Result</a></td></tr>
<tr><td class="result-snippet">Snippet for the second result.</td></tr>
</table></body></html>`

func TestWebSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "golang", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, liteResultsHTML)
	}))
	defer srv.Close()

	search := NewWebSearch()
	search.baseURL = srv.URL + "/"

	resp, err := search.Search(context.Background(), SearchRequest{Query: "golang"})
	require.NoError(t, err)
	require.Empty(t, resp.Error)
	require.Len(t, resp.Results, 2)

	require.Equal(t, "First Result", resp.Results[0].Title)
	require.Equal(t, "https://example.com/one", resp.Results[0].URL)
	require.Equal(t, "Snippet for the first result.", resp.Results[0].Snippet)
	require.Equal(t, "https://example.com/two", resp.Results[1].URL)
}

func TestWebSearch_MaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, liteResultsHTML)
	}))
	defer srv.Close()

	search := NewWebSearch()
	search.baseURL = srv.URL + "/"

	resp, err := search.Search(context.Background(), SearchRequest{Query: "golang", MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
}

func TestWebSearch_EmptyQuery(t *testing.T) {
	resp, err := NewWebSearch().Search(context.Background(), SearchRequest{})
	require.NoError(t, err)
	require.Equal(t, "query is required", resp.Error)
}

func TestCleanRedirectURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=x", "https://example.com/page"},
		{"https://example.com/direct", "https://example.com/direct"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, cleanRedirectURL(tt.in))
	}
}

func TestPageFetch_Markdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Title</h1><p>Some <b>bold</b> text.</p></body></html>`)
	}))
	defer srv.Close()

	resp, err := NewPageFetcher().Fetch(context.Background(), FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	require.Empty(t, resp.Error)
	require.Contains(t, resp.Content, "# Title")
	require.Contains(t, resp.Content, "**bold**")
}

func TestPageFetch_Text(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><script>alert(1)</script><p>Visible text.</p></body></html>`)
	}))
	defer srv.Close()

	resp, err := NewPageFetcher().Fetch(context.Background(), FetchRequest{URL: srv.URL, Format: "text"})
	require.NoError(t, err)
	require.Contains(t, resp.Content, "Visible text.")
	require.NotContains(t, resp.Content, "alert")
}

func TestPageFetch_NonHTMLPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "a,b\n1,2\n")
	}))
	defer srv.Close()

	resp, err := NewPageFetcher().Fetch(context.Background(), FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, "a,b\n1,2\n", resp.Content)
}

func TestPageFetch_RejectsNonHTTP(t *testing.T) {
	resp, err := NewPageFetcher().Fetch(context.Background(), FetchRequest{URL: "ftp://example.com"})
	require.NoError(t, err)
	require.Contains(t, resp.Error, "http://")
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0", want: "dQw4w9WgXcQ"},
		{in: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://example.com/not-a-video", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ExtractVideoID(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestTranscript(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			require.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
			fmt.Fprintf(w, `<html>"captionTracks":[{"baseUrl":"%s/api/timedtext?v=dQw4w9WgXcQ&lang=en"</html>`, srv.URL)
		case "/api/timedtext":
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, `<?xml version="1.0"?><transcript><text start="0" dur="2">Never gonna</text><text start="2" dur="2">give you up</text></transcript>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	fetcher := NewTranscriptFetcher()
	fetcher.baseURL = srv.URL

	resp, err := fetcher.Transcript(context.Background(), TranscriptRequest{
		VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	require.Empty(t, resp.Error)
	require.Equal(t, "dQw4w9WgXcQ", resp.VideoID)
	require.Equal(t, "Never gonna give you up", resp.Transcript)
}

func TestTranscript_NoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html>no captions here</html>`)
	}))
	defer srv.Close()

	fetcher := NewTranscriptFetcher()
	fetcher.baseURL = srv.URL

	resp, err := fetcher.Transcript(context.Background(), TranscriptRequest{VideoURL: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	require.Contains(t, resp.Error, "no captions")
}
