package search

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/intensifier/ishell/internal/command"
)

// Result is one parsed search result.
type Result struct {
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"` // HTML
	Thumbnail string `json:"thumbnail,omitempty"`
	Href      string `json:"href,omitempty"`
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// Parse extracts results from page using the selectors of spec. Relative
// links are resolved against pageURL. At most limit results are returned
// when limit is positive.
func Parse(page, pageURL string, spec command.ParserSpec, limit int) ([]Result, error) {
	if spec.Container == "" {
		return nil, fmt.Errorf("parser has no container selector")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)

	results := []Result{}
	doc.Find(spec.Container).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := s
		if spec.Title != "" {
			title = s.Find(spec.Title).First()
		}
		r := Result{Title: strings.Join(strings.Fields(title.Text()), " ")}
		if r.Title == "" {
			return true
		}

		if spec.Body != "" {
			if html, err := s.Find(spec.Body).First().Html(); err == nil {
				r.Body = strings.TrimSpace(html)
			}
		}
		if spec.Thumbnail != "" {
			src, _ := s.Find(spec.Thumbnail).First().Attr("src")
			r.Thumbnail = resolve(base, src)
		}

		var href string
		switch {
		case spec.Href != "":
			href, _ = s.Find(spec.Href).First().Attr("href")
		default:
			var ok bool
			if href, ok = title.Attr("href"); !ok {
				href, _ = title.Find("a").First().Attr("href")
			}
		}
		r.Href = resolve(base, href)

		results = append(results, r)
		return limit <= 0 || len(results) < limit
	})
	return results, nil
}

func newConverter() *md.Converter {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		EmDelimiter:      "*",
	})
	converter.Remove("script", "style", "meta", "link")
	return converter
}

// Render formats results as a numbered Markdown list.
func Render(results []Result) (string, error) {
	if len(results) == 0 {
		return "No results.", nil
	}
	converter := newConverter()

	var b strings.Builder
	for i, r := range results {
		if r.Href != "" {
			fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, r.Title, r.Href)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		}
		if r.Body == "" {
			continue
		}
		body, err := converter.ConvertString(r.Body)
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
			b.WriteString("   " + line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
