package videohost

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/api/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.VideoHostConfig{
		BaseURL:       baseURL,
		APISecret:     "test-secret",
		UploadTimeout: 5 * time.Second,
		PlaybackTTL:   300 * time.Second,
	})
}

func TestCreateUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "My Lecture", r.URL.Query().Get("title"))
		assert.Equal(t, "Apisecret test-secret", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"videoId": "remote-123",
			"clientPayload": map[string]string{
				"uploadLink": "https://upload.example.com/bucket",
				"policy":     "signed-policy",
				"key":        "orders/remote-123",
			},
		})
	}))
	defer srv.Close()

	creds, err := newTestClient(srv.URL).CreateUpload(context.Background(), "My Lecture")
	require.NoError(t, err)
	assert.Equal(t, "remote-123", creds.VideoID)
	assert.Equal(t, "https://upload.example.com/bucket", creds.UploadURL)
	assert.Equal(t, "signed-policy", creds.Fields["policy"])
	assert.Equal(t, "201", creds.Fields["success_action_status"])
	assert.NotContains(t, creds.Fields, "uploadLink")
}

func TestCreateUpload_QuotaExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Monthly upload quota exceeded"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateUpload(context.Background(), "Over Quota")
	require.Error(t, err)

	var quotaErr *QuotaError
	assert.ErrorAs(t, err, &quotaErr)
}

func TestCreateUpload_RemoteDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateUpload(context.Background(), "Anything")
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
}

func TestCreateUpload_MissingUploadLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"videoId": "remote-123"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateUpload(context.Background(), "Incomplete")
	var remoteErr *RemoteError
	assert.ErrorAs(t, err, &remoteErr)
}

func TestUploadFile(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "lecture.mp4")
	require.NoError(t, os.WriteFile(staged, []byte("fake video bytes"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "signed-policy", r.FormValue("policy"))
		assert.Equal(t, "201", r.FormValue("success_action_status"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "lecture.mp4", header.Filename)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	creds := UploadCredentials{
		VideoID:   "remote-123",
		UploadURL: srv.URL,
		Fields: map[string]string{
			"policy":                "signed-policy",
			"success_action_status": "201",
		},
	}

	err := newTestClient(srv.URL).UploadFile(context.Background(), creds, staged)
	assert.NoError(t, err)
}

func TestUploadFile_StreamsBody(t *testing.T) {
	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i)
	}
	staged := filepath.Join(t.TempDir(), "lecture.mp4")
	require.NoError(t, os.WriteFile(staged, payload, 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A streamed pipe body has no Content-Length; a pre-buffered
		// body would report the full multipart size here.
		assert.Equal(t, int64(-1), r.ContentLength)

		require.NoError(t, r.ParseMultipartForm(4<<20))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, payload, got)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).UploadFile(context.Background(), UploadCredentials{UploadURL: srv.URL}, staged)
	assert.NoError(t, err)
}

func TestUploadFile_Rejected(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "lecture.mp4")
	require.NoError(t, os.WriteFile(staged, []byte("bytes"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).UploadFile(context.Background(), UploadCredentials{UploadURL: srv.URL}, staged)
	var uploadErr *UploadError
	assert.ErrorAs(t, err, &uploadErr)
}

func TestGetVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/remote-123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "remote-123",
			"status": "ready",
			"length": 754,
		})
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).GetVideo(context.Background(), "remote-123")
	require.NoError(t, err)
	assert.Equal(t, "remote-123", info.ID)
	assert.Equal(t, "ready", info.Status)
	assert.Equal(t, 754, info.DurationSecs)
}

func TestPlaybackOTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/videos/remote-123/otp", r.URL.Path)

		var body struct {
			TTL int `json:"ttl"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 300, body.TTL)

		json.NewEncoder(w).Encode(map[string]string{
			"otp":          "otp-token",
			"playbackInfo": "playback-blob",
		})
	}))
	defer srv.Close()

	playback, err := newTestClient(srv.URL).PlaybackOTP(context.Background(), "remote-123")
	require.NoError(t, err)
	assert.Equal(t, "otp-token", playback.OTP)
	assert.Equal(t, "playback-blob", playback.PlaybackInfo)
}

func TestDelete_NotFoundIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "remote-123", r.URL.Query().Get("videos"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Delete(context.Background(), "remote-123")
	assert.NoError(t, err)
}

func TestDelete_RemoteFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Delete(context.Background(), "remote-123")
	var remoteErr *RemoteError
	assert.ErrorAs(t, err, &remoteErr)
}
