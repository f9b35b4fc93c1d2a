package articles

import (
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

// listQuery turns the public list filters into a store query. Anyone may list
// published articles; other statuses need edit rights and are narrowed to the
// caller's own articles unless they may edit every article.
func listQuery(c *gin.Context, actor access.Actor) (store.Query, bool) {
	q := store.Query{}
	status := c.DefaultQuery("status", articles.StatusPublished)
	if status != articles.StatusPublished {
		if !access.Can(actor, access.EditArticles) {
			return q, false
		}
		if !access.CanAny(actor, access.EditArticles) {
			q = q.Where("author_id", store.Eq, actor.ID)
		}
	}
	if status != "all" {
		q = q.Where("status", store.Eq, status)
	}
	if v := c.Query("category"); v != "" {
		q = q.Where("category", store.Eq, v)
	}
	if v := c.Query("tag"); v != "" {
		q = q.Where("tags", store.Contains, v)
	}
	if v := c.Query("author"); v != "" {
		q = q.Where("author_id", store.Eq, v)
	}

	orderField := "published_at"
	if status != articles.StatusPublished {
		orderField = "created_at"
	}
	return q.OrderBy(orderField, c.Query("order") != "oldest"), true
}

// visible reports whether actor may read a, which is any published article or
// one the actor could edit.
func visible(a *articles.Article, actor access.Actor) bool {
	return a.Published() || access.Authorize(actor, access.EditArticles, a.AuthorID)
}
