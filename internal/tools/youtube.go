package tools

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-agent-go/tool"
	"trpc.group/trpc-go/trpc-agent-go/tool/function"
)

const transcriptTimeout = 30 * time.Second

// TranscriptRequest is the argument payload for the video_transcript tool.
type TranscriptRequest struct {
	VideoURL string `json:"video_url" jsonschema:"description=The YouTube video URL or video ID to fetch the transcript for,required"`
}

// TranscriptResponse is the video_transcript tool result.
type TranscriptResponse struct {
	VideoID    string `json:"video_id"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TranscriptFetcher retrieves YouTube video transcripts by scraping the
// caption track URL from the watch page and downloading the timedtext
// XML it points at.
type TranscriptFetcher struct {
	http    *http.Client
	baseURL string
}

// NewTranscriptFetcher creates a TranscriptFetcher against youtube.com.
func NewTranscriptFetcher() *TranscriptFetcher {
	return &TranscriptFetcher{
		http:    &http.Client{Timeout: transcriptTimeout},
		baseURL: "https://www.youtube.com",
	}
}

// Tool wraps Transcript for registration with the agent.
func (f *TranscriptFetcher) Tool() tool.Tool {
	return function.NewFunctionTool(
		f.Transcript,
		function.WithName("video_transcript"),
		function.WithDescription("Load the transcript of a YouTube video given its URL. Use this to answer questions about the spoken content of a video."),
	)
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/(?:embed|shorts|live)/([A-Za-z0-9_-]{11})`),
}

var bareVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video ID out of the common
// YouTube URL shapes, or accepts a bare ID.
func ExtractVideoID(videoURL string) (string, error) {
	videoURL = strings.TrimSpace(videoURL)
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(videoURL); m != nil {
			return m[1], nil
		}
	}
	if bareVideoID.MatchString(videoURL) {
		return videoURL, nil
	}
	return "", fmt.Errorf("could not extract video ID from %q", videoURL)
}

// Transcript fetches the caption track for the video.
func (f *TranscriptFetcher) Transcript(ctx context.Context, req TranscriptRequest) (TranscriptResponse, error) {
	var resp TranscriptResponse

	videoID, err := ExtractVideoID(req.VideoURL)
	if err != nil {
		resp.Error = err.Error()
		return resp, nil
	}
	resp.VideoID = videoID

	trackURL, err := f.captionTrackURL(ctx, videoID)
	if err != nil {
		resp.Error = err.Error()
		return resp, nil
	}

	transcript, err := f.fetchTimedText(ctx, trackURL)
	if err != nil {
		resp.Error = err.Error()
		return resp, nil
	}

	resp.Transcript = transcript
	return resp, nil
}

var captionTrackPattern = regexp.MustCompile(`"captionTracks":\[\{"baseUrl":"([^"]+)"`)

// captionTrackURL scrapes the first caption track URL from the watch
// page. The URL is embedded as a JSON string, so it arrives with
// escaped characters (& for ampersands).
func (f *TranscriptFetcher) captionTrackURL(ctx context.Context, videoID string) (string, error) {
	watchURL := f.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return "", fmt.Errorf("building watch page request: %w", err)
	}
	setBrowserHeaders(httpReq)

	httpResp, err := f.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to load video page: %w", err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("video page returned status code %d", httpResp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read video page: %w", err)
	}

	m := captionTrackPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no captions available for video %s", videoID)
	}

	var trackURL string
	if err := json.Unmarshal([]byte(`"`+string(m[1])+`"`), &trackURL); err != nil {
		return "", fmt.Errorf("failed to decode caption track URL: %w", err)
	}
	return trackURL, nil
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func (f *TranscriptFetcher) fetchTimedText(ctx context.Context, trackURL string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("building transcript request: %w", err)
	}

	httpResp, err := f.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript returned status code %d", httpResp.StatusCode)
	}

	var doc timedText
	if err := xml.NewDecoder(httpResp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to parse transcript: %w", err)
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		// Caption text is double-escaped: once for XML, once for HTML.
		if line := strings.TrimSpace(html.UnescapeString(t.Value)); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}
