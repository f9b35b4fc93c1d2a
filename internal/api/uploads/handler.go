package uploads

import (
	"bufio"
	"errors"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/media"
	"newsdesk/internal/storage"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const sniffLen = 512

type Handler struct {
	Storage storage.Storage
	Uploads store.Collection[media.Upload]
	Log     zerolog.Logger
	Now     func() time.Time

	MaxBytes int64
}

func NewHandler(st storage.Storage, col store.Collection[media.Upload], maxBytes int64, log zerolog.Logger) *Handler {
	return &Handler{
		Storage:  st,
		Uploads:  col,
		Log:      log.With().Str("handler", "uploads").Logger(),
		Now:      time.Now,
		MaxBytes: maxBytes,
	}
}

// ------------------------------
// POST /api/uploads
// ------------------------------
func (h *Handler) Upload(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	if h.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is not configured"})
		return
	}
	if h.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
			return
		}
		apiutil.BadRequest(c, "file is required")
		return
	}
	if h.MaxBytes > 0 && fh.Size > h.MaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}
	contentType, ok := media.ImageContentType(fh.Filename)
	if !ok {
		apiutil.BadRequest(c, "Only jpg, png, webp and gif images are allowed")
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	// The extension is not trusted on its own.
	br := bufio.NewReaderSize(f, sniffLen)
	head, _ := br.Peek(sniffLen)
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		apiutil.BadRequest(c, "File is not an image")
		return
	}

	key := media.ObjectKey(fh.Filename, h.Now().UTC())
	url, err := h.Storage.Put(c.Request.Context(), key, br, fh.Size, contentType)
	if err != nil {
		h.Log.Error().Err(err).Str("key", key).Msg("store upload")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store file"})
		return
	}

	u := media.Upload{
		Key:         key,
		URL:         url,
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		UploaderID:  actor.ID,
	}
	id, err := h.Uploads.Create(c.Request.Context(), &u)
	if err != nil {
		apiutil.RespondError(c, err, "Upload")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "url": url, "key": key})
}

// ------------------------------
// GET /api/uploads
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	q := store.Query{}
	if !access.CanAny(actor, access.ManageSettings) || c.Query("mine") == "true" {
		q = q.Where("uploader_id", store.Eq, actor.ID)
	}
	list, err := h.Uploads.List(c.Request.Context(), q.OrderBy("created_at", true).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Upload")
		return
	}
	apiutil.RespondList(c, list)
}

// ------------------------------
// DELETE /api/uploads/:id
// ------------------------------
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	u, err := h.Uploads.GetByID(ctx, c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Upload")
		return
	}
	if u.UploaderID != actor.ID && !access.CanAny(actor, access.ManageSettings) {
		apiutil.Forbidden(c)
		return
	}
	if h.Storage != nil {
		if err := h.Storage.Delete(ctx, u.Key); err != nil {
			h.Log.Error().Err(err).Str("key", u.Key).Msg("delete object")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete file"})
			return
		}
	}
	if err := h.Uploads.Delete(ctx, u.ID); err != nil {
		apiutil.RespondError(c, err, "Upload")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
