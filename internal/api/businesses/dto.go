package businesses

import "newsdesk/internal/api/apiutil"

type CreateBusinessRequest struct {
	Name        string            `json:"name" binding:"required"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	Lat         float64           `json:"lat"`
	Lng         float64           `json:"lng"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email"`
	Website     string            `json:"website"`
	Hours       map[string]string `json:"hours"`
	Images      []string          `json:"images"`
}

// Owners edit the listing itself; status and featured belong to approvers.
var ownerFields = apiutil.Fields{
	"name":        apiutil.Text,
	"slug":        apiutil.Raw,
	"description": apiutil.HTML,
	"category":    apiutil.Raw,
	"address":     apiutil.Text,
	"city":        apiutil.Text,
	"lat":         apiutil.Float,
	"lng":         apiutil.Float,
	"phone":       apiutil.Text,
	"email":       apiutil.Raw,
	"website":     apiutil.Raw,
	"hours":       apiutil.JSON,
	"images":      apiutil.StringList,
}

var approverFields = func() apiutil.Fields {
	f := apiutil.Fields{"featured": apiutil.Bool, "owner_id": apiutil.Raw}
	for k, v := range ownerFields {
		f[k] = v
	}
	return f
}()
