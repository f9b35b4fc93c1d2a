package content

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"mvdan.cc/xurls/v2"
)

var (
	ugcOnce   sync.Once
	ugcPolicy *bluemonday.Policy

	strict = bluemonday.StrictPolicy()

	md = goldmark.New(goldmark.WithExtensions(extension.GFM))

	strictURLs = xurls.Strict()
	imgSrc     = regexp.MustCompile(`(?i)<img[^>]+src="([^"]+)"`)
)

func ugc() *bluemonday.Policy {
	ugcOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.AllowAttrs("class").OnElements("figure", "figcaption", "span", "div")
	})
	return ugcPolicy
}

// SanitizeHTML keeps the markup an editor can legitimately produce and drops scripts and handlers.
func SanitizeHTML(s string) string {
	return ugc().Sanitize(s)
}

// StripTags removes every tag and returns plain text; used for plain-text fields.
// The strict policy entity-encodes what it keeps, so the result is unescaped again
// and re-stripped until encoded markup can no longer turn into tags.
func StripTags(s string) string {
	for i := 0; i < 4; i++ {
		out := html.UnescapeString(strict.Sanitize(s))
		if out == s {
			break
		}
		s = out
	}
	return strings.TrimSpace(s)
}

// MarkdownToHTML renders markdown and sanitizes the result.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return SanitizeHTML(buf.String()), nil
}

// Excerpt returns the first n runes of the text content of body.
func Excerpt(body string, n int) string {
	text := strings.Join(strings.Fields(StripTags(body)), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// ImageURLs returns img sources plus bare URLs found in body, without duplicates.
func ImageURLs(body string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(u string) {
		u = strings.TrimRight(u, `.,;:"')`)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	for _, m := range imgSrc.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	for _, u := range strictURLs.FindAllString(body, -1) {
		add(u)
	}
	return out
}
