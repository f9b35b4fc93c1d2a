package articles

import "newsdesk/internal/api/apiutil"

// ---------- requests

type CreateArticleRequest struct {
	Title         string   `json:"title" binding:"required"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Slug          string   `json:"slug"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featured_image"`
	Status        string   `json:"status"`
}

var updateFields = apiutil.Fields{
	"title":          apiutil.Text,
	"content":        apiutil.HTML,
	"excerpt":        apiutil.Text,
	"slug":           apiutil.Raw,
	"category":       apiutil.Raw,
	"tags":           apiutil.StringList,
	"featured_image": apiutil.Raw,
	"status":         apiutil.Raw,
}

