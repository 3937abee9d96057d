package videohost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"learnhub/api/internal/config"
)

// Client wraps the DRM video host's REST API. Only the narrow surface the
// catalog needs is exposed: credentialed uploads, metadata reads, playback
// OTPs and deletion.
type Client struct {
	baseURL     string
	apiSecret   string
	playbackTTL time.Duration
	httpClient  *http.Client
}

func NewClient(cfg config.VideoHostConfig) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiSecret:   cfg.APISecret,
		playbackTTL: cfg.PlaybackTTL,
		httpClient:  &http.Client{Timeout: cfg.UploadTimeout},
	}
}

// UploadCredentials is the one-time policy the host hands out for pushing
// a single video file.
type UploadCredentials struct {
	VideoID   string
	UploadURL string
	Fields    map[string]string
}

type VideoInfo struct {
	ID           string
	Status       string
	DurationSecs int
}

type Playback struct {
	OTP          string `json:"otp"`
	PlaybackInfo string `json:"playbackInfo"`
}

// CreateUpload reserves a remote video slot and returns upload credentials.
func (c *Client) CreateUpload(ctx context.Context, title string) (UploadCredentials, error) {
	endpoint := fmt.Sprintf("%s/videos?title=%s", c.baseURL, url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return UploadCredentials{}, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadCredentials{}, &RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return UploadCredentials{}, err
	}

	var body struct {
		VideoID       string            `json:"videoId"`
		ClientPayload map[string]string `json:"clientPayload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return UploadCredentials{}, &RemoteError{StatusCode: resp.StatusCode, Message: "malformed upload credentials"}
	}
	if body.VideoID == "" || body.ClientPayload["uploadLink"] == "" {
		return UploadCredentials{}, &RemoteError{StatusCode: resp.StatusCode, Message: "incomplete upload credentials"}
	}

	fields := make(map[string]string, len(body.ClientPayload))
	for k, v := range body.ClientPayload {
		if k == "uploadLink" {
			continue
		}
		fields[k] = v
	}
	// The host's storage policy requires these two on every upload.
	fields["success_action_status"] = "201"
	fields["success_action_redirect"] = ""

	return UploadCredentials{
		VideoID:   body.VideoID,
		UploadURL: body.ClientPayload["uploadLink"],
		Fields:    fields,
	}, nil
}

// UploadFile pushes the staged file against previously issued credentials.
// The multipart body is streamed through a pipe so memory stays flat no
// matter how large the video is.
func (c *Client) UploadFile(ctx context.Context, creds UploadCredentials, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return &UploadError{Message: fmt.Sprintf("open staged file: %v", err)}
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		for key, value := range creds.Fields {
			if err := writer.WriteField(key, value); err != nil {
				pw.CloseWithError(fmt.Errorf("write field %s: %w", key, err))
				return
			}
		}
		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(fmt.Errorf("copy file: %w", err))
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.UploadURL, pr)
	if err != nil {
		pr.Close()
		return &UploadError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UploadError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return &UploadError{Message: fmt.Sprintf("host returned status %d", resp.StatusCode)}
	}
	return nil
}

// GetVideo fetches remote metadata, primarily the duration.
func (c *Client) GetVideo(ctx context.Context, videoID string) (VideoInfo, error) {
	endpoint := fmt.Sprintf("%s/videos/%s", c.baseURL, url.PathEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VideoInfo{}, &RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return VideoInfo{}, err
	}

	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Length int    `json:"length"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return VideoInfo{}, &RemoteError{StatusCode: resp.StatusCode, Message: "malformed video info"}
	}

	return VideoInfo{
		ID:           body.ID,
		Status:       body.Status,
		DurationSecs: body.Length,
	}, nil
}

// PlaybackOTP issues a short-lived playback token for a remote video.
func (c *Client) PlaybackOTP(ctx context.Context, videoID string) (Playback, error) {
	payload, _ := json.Marshal(map[string]any{
		"ttl": int(c.playbackTTL.Seconds()),
	})

	endpoint := fmt.Sprintf("%s/videos/%s/otp", c.baseURL, url.PathEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Playback{}, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Playback{}, &RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return Playback{}, err
	}

	var playback Playback
	if err := json.NewDecoder(resp.Body).Decode(&playback); err != nil {
		return Playback{}, &RemoteError{StatusCode: resp.StatusCode, Message: "malformed playback response"}
	}
	return playback, nil
}

// Delete removes the remote asset. Callers treat failures as retryable and
// never let them block local catalog deletes.
func (c *Client) Delete(ctx context.Context, videoID string) error {
	endpoint := fmt.Sprintf("%s/videos?videos=%s", c.baseURL, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Already gone remotely; deletion is idempotent from our side.
		return nil
	}
	return c.checkStatus(resp)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Apisecret "+c.apiSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(message), "quota") {
		return &QuotaError{Message: message}
	}
	return &RemoteError{StatusCode: resp.StatusCode, Message: message}
}
