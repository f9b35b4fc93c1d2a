package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"newsdesk/internal/store"

	"github.com/google/uuid"
)

// Upload records one object written to the media bucket.
type Upload struct {
	store.Base
	Key         string `gorm:"not null;uniqueIndex" json:"key"`
	URL         string `gorm:"not null" json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	UploaderID  string `gorm:"index" json:"uploader_id"`
}

func (Upload) TableName() string { return "media" }

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ImageContentType returns the content type for an allowed image filename.
func ImageContentType(filename string) (string, bool) {
	ct, ok := allowedExt[strings.ToLower(path.Ext(filename))]
	return ct, ok
}

// ObjectKey places uploads under uploads/YYYY/MM/<uuid><ext>.
func ObjectKey(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}
