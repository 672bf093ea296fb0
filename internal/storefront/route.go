package storefront

import (
	"net"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

type Mode string

const (
	ModeStorefront  Mode = "storefront"
	ModeMarketplace Mode = "marketplace"
)

type Route struct {
	Mode      Mode   `json:"mode"`
	Subdomain string `json:"subdomain,omitempty"`
}

var systemSubdomains = []string{"www", "api", "admin", "app", "dashboard"}

var previewHosts = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z0-9]{8,}-.*\.bolt\.new$`),
	regexp.MustCompile(`^[a-z0-9]{8,}-.*\.vercel\.app$`),
	regexp.MustCompile(`^[a-z0-9]{8,}-.*\.netlify\.app$`),
	regexp.MustCompile(`^[a-z0-9]{8,}-.*\.surge\.sh$`),
	regexp.MustCompile(`^[a-z0-9]{8,}-.*\.herokuapp\.com$`),
	regexp.MustCompile(`^[a-z0-9]{8,}\..*\.pages\.dev$`),
	regexp.MustCompile(`^preview-[a-z0-9]{8,}\..*$`),
}

func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

func isLocal(host string) bool {
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	return slices.ContainsFunc(previewHosts, func(re *regexp.Regexp) bool { return re.MatchString(host) })
}

// ResolveRoute decides whether a request addresses a storefront. Local and
// preview hosts take the subdomain from the "subdomain" query parameter.
func ResolveRoute(host string, query url.Values) Route {
	h := hostname(host)
	if isLocal(h) {
		if sub := query.Get("subdomain"); sub != "" {
			return Route{Mode: ModeStorefront, Subdomain: sub}
		}
		return Route{Mode: ModeMarketplace}
	}

	parts := strings.Split(h, ".")
	if len(parts) > 2 && !slices.Contains(systemSubdomains, parts[0]) {
		return Route{Mode: ModeStorefront, Subdomain: parts[0]}
	}
	return Route{Mode: ModeMarketplace}
}

// StorefrontURL links to a storefront from a page served on host.
func StorefrontURL(scheme, host, subdomain string) string {
	h := hostname(host)
	if isLocal(h) {
		u := url.URL{Scheme: scheme, Host: host, Path: "/", RawQuery: url.Values{"subdomain": {subdomain}}.Encode()}
		return u.String()
	}
	base := h
	if i := strings.Index(h, "."); i >= 0 && strings.Count(h, ".") > 1 {
		base = h[i+1:]
	}
	return scheme + "://" + subdomain + "." + base
}
