package handlers

import (
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/ids"
	"learnhub/api/internal/middleware"
	"learnhub/api/internal/models"
)

func currentUser(c *gin.Context) models.User {
	value, _ := c.Get(middleware.CtxUser)
	user, _ := value.(models.User)
	return user
}

func isAdmin(user models.User) bool {
	return user.Role == models.UserRoleAdmin
}

// deviceInfo extracts a coarse browser/OS label from the User-Agent. The
// result is display metadata for the "your other device" message; it never
// feeds authorization.
func deviceInfo(c *gin.Context) models.DeviceInfo {
	ua := c.GetHeader("User-Agent")
	return models.DeviceInfo{
		UserAgent: ua,
		IPAddress: c.ClientIP(),
		Browser:   detectBrowser(ua),
		OS:        detectOS(ua),
	}
}

func detectBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Edg/"):
		return "Edge"
	case strings.Contains(ua, "OPR/") || strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Chrome/"):
		return "Chrome"
	case strings.Contains(ua, "Firefox/"):
		return "Firefox"
	case strings.Contains(ua, "Safari/"):
		return "Safari"
	case ua == "":
		return "Unknown"
	default:
		return "Other"
	}
}

func detectOS(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad"):
		return "iOS"
	case strings.Contains(ua, "Mac OS"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

// uploadImage stores a multipart image under prefix/<ksuid><ext> and
// returns the public URL with the object key.
func (h HandlerSet) uploadImage(c *gin.Context, header *multipart.FileHeader, prefix string) (url string, key string, err error) {
	file, err := header.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	if ext == "" {
		ext = ".bin"
	}
	key = fmt.Sprintf("%s/%s%s", prefix, ids.New(), ext)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err = h.store.Put(c.Request.Context(), key, file, header.Size, contentType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

func (h HandlerSet) removeObject(c *gin.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := h.store.Remove(c.Request.Context(), *key); err != nil {
		h.log.Warn().Err(err).Str("key", *key).Msg("remove stored object failed")
	}
}
