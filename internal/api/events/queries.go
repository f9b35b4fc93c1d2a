package events

import (
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/events"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

// rangeQuery filters on start_date. Without ?from= only upcoming events are returned.
func rangeQuery(c *gin.Context, now time.Time) (store.Query, error) {
	q := store.Query{}
	from := now
	if v := c.Query("from"); v != "" {
		t, err := apiutil.ParseTime(v)
		if err != nil {
			return q, &apiutil.FieldError{Field: "from"}
		}
		from = t
	}
	if c.Query("past") != "true" || c.Query("from") != "" {
		q = q.Where("start_date", store.Gte, from)
	}
	if v := c.Query("to"); v != "" {
		t, err := apiutil.ParseTime(v)
		if err != nil {
			return q, &apiutil.FieldError{Field: "to"}
		}
		q = q.Where("start_date", store.Lte, t)
	}
	if v := c.Query("category"); v != "" {
		q = q.Where("category", store.Eq, v)
	}
	return q, nil
}

func canReview(a access.Actor) bool {
	return access.CanAny(a, access.ApproveEvents)
}

func visible(e *events.Event, a access.Actor) bool {
	return e.Status == events.StatusPublished || canReview(a) || access.Authorize(a, access.ManageEvents, e.SubmittedBy)
}
