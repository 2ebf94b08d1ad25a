// Package headless drives server-rendered forms without a browser: pages are
// fetched over HTTP, parsed with goquery and submitted through the same
// controller the browser bundle uses.
package headless

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/Its-donkey/formwire/internal/ui/submit"
)

const (
	maxPageBytes   = 2 * 1024 * 1024
	defaultTimeout = 15 * time.Second
)

// NewClient returns an HTTP client with a cookie jar so session and CSRF
// cookies set by a page are sent with its form submission.
func NewClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Jar: jar, Timeout: timeout}, nil
}

// Page is a fetched HTML document.
type Page struct {
	URL *url.URL
	doc *goquery.Document
}

// Fetch loads and parses the page at rawURL.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return Parse(resp.Request.URL, io.LimitReader(resp.Body, maxPageBytes))
}

// Parse reads a page served from base.
func Parse(base *url.URL, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{URL: base, doc: doc}, nil
}

// Form returns the form with id, or the first form when id is empty.
func (p *Page) Form(id string) (*Form, error) {
	var sel *goquery.Selection
	if strings.TrimSpace(id) == "" {
		sel = p.doc.Find("form").First()
	} else {
		sel = p.doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("id")
			return v == id
		}).First()
	}
	if sel.Length() == 0 {
		if id == "" {
			return nil, fmt.Errorf("page %s has no form", p.URL)
		}
		return nil, fmt.Errorf("page %s has no form %q", p.URL, id)
	}
	return newForm(p.URL, sel), nil
}

// FormIDs lists the ids of the page's forms.
func (p *Page) FormIDs() []string {
	var ids []string
	p.doc.Find("form[id]").Each(func(_ int, s *goquery.Selection) {
		if id, _ := s.Attr("id"); strings.TrimSpace(id) != "" {
			ids = append(ids, id)
		}
	})
	return ids
}

// CSRF returns the page's anti-forgery token, read from the <meta> tag named
// meta or else the first input named field.
func (p *Page) CSRF(meta, field string) submit.StaticToken {
	if meta != "" {
		if v, ok := p.doc.Find(`meta[name="` + meta + `"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
			return submit.StaticToken(strings.TrimSpace(v))
		}
	}
	if field != "" {
		if v, ok := p.doc.Find(`input[name="` + field + `"]`).First().Attr("value"); ok {
			return submit.StaticToken(strings.TrimSpace(v))
		}
	}
	return ""
}

// Resolve makes ref absolute against the page URL.
func (p *Page) Resolve(ref string) string {
	return resolve(p.URL, ref)
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil {
		return ref
	}
	if ref == "" {
		return base.String()
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
