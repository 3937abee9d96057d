package videohost

import "fmt"

// RemoteError is the generic failure bucket for the video host API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("video host: %s (status %d)", e.Message, e.StatusCode)
}

// QuotaError means the host refused the operation because the account's
// upload quota is exhausted; retrying without intervention is pointless.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	return "video host quota exceeded: " + e.Message
}

// UploadError means the asset push itself failed; the caller may retry.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return "video upload failed: " + e.Message
}
