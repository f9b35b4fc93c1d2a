// Package admincli holds the operations behind the newsadmin command.
package admincli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/oops"
	"newsdesk/internal/store"
)

func ListUsers(ctx context.Context, col store.Collection[users.User], role string, w io.Writer) error {
	q := store.Query{}.OrderBy("email", false)
	if role != "" {
		q = q.Where("role", store.Eq, role)
	}
	list, err := col.List(ctx, q)
	if err != nil {
		return oops.New(err, "listing users")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tDISABLED")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.DisplayName, u.Role, u.Disabled)
	}
	return tw.Flush()
}

// SetRole changes the role of the user with the given email.
func SetRole(ctx context.Context, col store.Collection[users.User], email, role string) (*users.User, error) {
	r, ok := access.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	u, err := col.FindOne(ctx, store.Query{}.Where("email", store.Eq, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, oops.New(err, "finding user %s", email)
	}
	return col.Mutate(ctx, u.ID, func(u *users.User) error {
		u.Role = string(r)
		return nil
	})
}

type BrokenImage struct {
	ArticleID string
	URL       string
	Problem   string
}

type ImageReport struct {
	Articles int
	Checked  int
	Broken   []BrokenImage
}

// CheckImages sends a HEAD request for every featured image and every URL in article content.
func CheckImages(ctx context.Context, col store.Collection[articles.Article], client *http.Client, w io.Writer) (*ImageReport, error) {
	list, err := col.List(ctx, store.Query{}.OrderBy("created_at", true))
	if err != nil {
		return nil, oops.New(err, "listing articles")
	}
	report := &ImageReport{Articles: len(list)}
	checked := map[string]string{}
	for _, a := range list {
		urls := content.ImageURLs(a.Content)
		if a.FeaturedImage != "" {
			urls = append([]string{a.FeaturedImage}, urls...)
		}
		for _, u := range urls {
			problem, seen := checked[u]
			if !seen {
				problem = headProblem(ctx, client, u)
				checked[u] = problem
				report.Checked++
			}
			if problem != "" {
				report.Broken = append(report.Broken, BrokenImage{ArticleID: a.ID, URL: u, Problem: problem})
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, u, problem)
			}
		}
	}
	return report, nil
}

func headProblem(ctx context.Context, client *http.Client, url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "not an absolute http url"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err.Error()
	}
	resp, err := client.Do(req)
	if err != nil {
		return err.Error()
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return resp.Status
	}
	return ""
}

type ImportResult struct {
	Imported []string
	Skipped  []string
}

// ImportAds reads a JSON array of legacy advertising records and stores them in the canonical shape.
func ImportAds(ctx context.Context, col store.Collection[ads.Advertisement], r io.Reader) (*ImportResult, error) {
	var records []json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, oops.New(err, "decoding export")
	}
	res := &ImportResult{}
	for i, raw := range records {
		ad, err := ads.MigrateLegacy(raw)
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		impressions, clicks := ad.Impressions, ad.Clicks
		id, err := col.Create(ctx, ad)
		if err != nil {
			return res, oops.New(err, "storing record %d", i)
		}
		if impressions > 0 {
			if err := col.Increment(ctx, id, "impressions", impressions); err != nil {
				return res, oops.New(err, "restoring impressions of record %d", i)
			}
		}
		if clicks > 0 {
			if err := col.Increment(ctx, id, "clicks", clicks); err != nil {
				return res, oops.New(err, "restoring clicks of record %d", i)
			}
		}
		res.Imported = append(res.Imported, id)
	}
	return res, nil
}
