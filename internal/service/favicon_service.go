package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	maxFaviconRedirects = 3
	// Only the document head matters; the rest of a page is never read
	maxFaviconPageBytes = 1 << 20
)

var (
	ErrInvalidSiteURL  = errors.New("url must be an absolute http(s) url")
	ErrBlockedSiteHost = errors.New("url host is not publicly reachable")
	ErrSiteUnreachable = errors.New("site could not be fetched")
)

// iconSelectors are tried in order; the first usable href wins
var iconSelectors = []string{
	`link[rel~="icon"]`,
	`link[rel="apple-touch-icon"]`,
	`link[rel="apple-touch-icon-precomposed"]`,
}

// SiteInfo is what a website app shows before the user customizes it
type SiteInfo struct {
	Favicon string `json:"favicon"`
	Title   string `json:"title"`
}

// FaviconService looks up the favicon and title of a website
type FaviconService struct {
	client       *resty.Client
	allowPrivate bool
}

// NewFaviconService creates a FaviconService whose requests give up after timeout
func NewFaviconService(timeout time.Duration) *FaviconService {
	s := &FaviconService{}
	s.client = resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "osdesk-favicon/1.0").
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5").
		SetRedirectPolicy(
			resty.FlexibleRedirectPolicy(maxFaviconRedirects),
			resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
				return s.checkHost(req.Context(), req.URL)
			}),
		)
	return s
}

// Lookup fetches rawURL and extracts its favicon and title. When the page
// declares no icon, /favicon.ico of the final host is assumed.
func (s *FaviconService) Lookup(ctx context.Context, rawURL string) (*SiteInfo, error) {
	if !domain.IsWebURL(rawURL) {
		return nil, ErrInvalidSiteURL
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidSiteURL
	}
	if err := s.checkHost(ctx, target); err != nil {
		return nil, err
	}

	resp, err := s.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(target.String())
	if err != nil {
		if errors.Is(err, ErrBlockedSiteHost) {
			return nil, ErrBlockedSiteHost
		}
		log.Debug().Err(err).Str("url", rawURL).Msg("Favicon lookup request failed")
		return nil, ErrSiteUnreachable
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		log.Debug().Int("status", resp.StatusCode()).Str("url", rawURL).Msg("Favicon lookup got error status")
		return nil, ErrSiteUnreachable
	}

	final := target
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		final = resp.RawResponse.Request.URL
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxFaviconPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return &SiteInfo{
		Favicon: findFavicon(doc, final),
		Title:   findTitle(doc),
	}, nil
}

func findFavicon(doc *goquery.Document, base *url.URL) string {
	for _, selector := range iconSelectors {
		var found string
		doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
			href, ok := sel.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return true
			}
			ref, err := url.Parse(strings.TrimSpace(href))
			if err != nil {
				return true
			}
			resolved := base.ResolveReference(ref).String()
			if !domain.IsWebURL(resolved) {
				return true
			}
			found = resolved
			return false
		})
		if found != "" {
			return found
		}
	}
	return (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/favicon.ico"}).String()
}

func findTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

// checkHost rejects targets that resolve to loopback, private or link-local
// addresses, including after redirects
func (s *FaviconService) checkHost(ctx context.Context, target *url.URL) error {
	if s.allowPrivate {
		return nil
	}
	host := target.Hostname()
	if host == "" {
		return ErrInvalidSiteURL
	}

	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return ErrSiteUnreachable
		}
		for _, addr := range addrs {
			ips = append(ips, addr.IP)
		}
	}

	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return ErrBlockedSiteHost
		}
	}
	return nil
}
