package evalapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mjimenezh/gaiabench/internal/models"
)

func TestQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/questions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.QuestionItem{ //nolint:errcheck
			{TaskID: "t1", Question: "How many?"},
			{TaskID: "t2", Question: "Which one?", FileName: "data.csv"},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	items, err := client.Questions(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "t1", items[0].TaskID)
	require.Equal(t, "data.csv", items[1].FileName)
}

func TestFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/t1":
			w.Write([]byte("a,b\n1,2\n")) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)

	data, err := client.File(context.Background(), "t1")
	require.NoError(t, err)
	require.Equal(t, "a,b\n1,2\n", string(data))

	_, err = client.File(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNoFile)
}

func TestSubmit_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submit", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload models.SubmissionPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "alice", payload.Username)
		require.Len(t, payload.Answers, 1)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":"alice","score":50.0,"correct_count":1,"total_attempted":2}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := New(srv.URL)
	receipt, err := client.Submit(context.Background(), &models.SubmissionPayload{
		Username:  "alice",
		AgentCode: "https://example.com/repo",
		Answers:   []models.AnswerItem{{TaskID: "t1", SubmittedAnswer: "42"}},
	})
	require.NoError(t, err)
	require.Equal(t, "50", receipt.DisplayScore())
	require.Equal(t, "1", receipt.DisplayCorrectCount())
}

func TestSubmit_HTTPErrorWithDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"bad payload"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Submit(context.Background(), &models.SubmissionPayload{Username: "alice"})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	require.Equal(t, "bad payload", httpErr.Detail)
	require.Contains(t, httpErr.Error(), "500")
	require.Contains(t, httpErr.Error(), "bad payload")
}

func TestSubmit_HTTPErrorRawBodyTruncated(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write(long) //nolint:errcheck
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Submit(context.Background(), &models.SubmissionPayload{Username: "alice"})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Empty(t, httpErr.Detail)
	require.Len(t, httpErr.Body, maxErrorBodyBytes)
}

func TestSubmit_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := client.Submit(context.Background(), &models.SubmissionPayload{Username: "alice"})
	require.ErrorIs(t, err, ErrTimeout)
}

func TestSubmit_NetworkError(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := New(srv.URL)
	_, err := client.Submit(context.Background(), &models.SubmissionPayload{Username: "alice"})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrTimeout))
	require.Contains(t, err.Error(), "network error")
}
