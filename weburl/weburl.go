// Package weburl provides URL normalization and validation shared by the
// scraper and the CLI. It includes private-address detection so fetches can
// be restricted to public hosts.
package weburl

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Pre-compiled CIDR networks for private/reserved IP ranges.
// These are parsed once at package initialization for efficiency.
var (
	cgnat    *net.IPNet // 100.64.0.0/10 - Carrier-grade NAT
	v6unique *net.IPNet // fc00::/7 - IPv6 unique local
	v6link   *net.IPNet // fe80::/10 - IPv6 link-local
)

func init() {
	var err error

	_, cgnat, err = net.ParseCIDR("100.64.0.0/10")
	if err != nil {
		panic("invalid CGNAT CIDR: " + err.Error())
	}

	_, v6unique, err = net.ParseCIDR("fc00::/7")
	if err != nil {
		panic("invalid IPv6 unique local CIDR: " + err.Error())
	}

	_, v6link, err = net.ParseCIDR("fe80::/10")
	if err != nil {
		panic("invalid IPv6 link-local CIDR: " + err.Error())
	}
}

// Normalize cleans up a user-entered URL and returns its canonical form.
// A missing scheme defaults to https, so "example.com" becomes
// "https://example.com". The host must contain at least one dot and the
// scheme must be http or https.
func Normalize(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}

	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https")
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("invalid URL format")
	}

	if !strings.Contains(parsed.Hostname(), ".") {
		return "", fmt.Errorf("invalid domain name: %s", parsed.Hostname())
	}

	return parsed.String(), nil
}

// ValidatePublic rejects URLs pointing at localhost, local domains, or
// private IP ranges. The scraper applies it before dialing unless the
// configuration explicitly allows private hosts.
func ValidatePublic(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsed.Hostname()

	lowHost := strings.ToLower(host)
	if lowHost == "localhost" || lowHost == "127.0.0.1" || lowHost == "::1" {
		return fmt.Errorf("localhost URLs are not allowed")
	}

	if strings.HasSuffix(lowHost, ".local") || strings.HasSuffix(lowHost, ".internal") {
		return fmt.Errorf("local domain URLs are not allowed")
	}

	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not allowed")
		}
	}

	return nil
}

// IsPrivateIP checks if an IP is in private/reserved ranges.
// It handles IPv4, IPv6, and IPv6-mapped IPv4 addresses.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	// Check for IPv6-mapped IPv4 addresses (::ffff:x.x.x.x)
	if v4 := ip.To4(); v4 != nil {
		ip = v4
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return true
		}
	}

	if cgnat.Contains(ip) || v6unique.Contains(ip) || v6link.Contains(ip) {
		return true
	}

	return false
}

// ResolveReference resolves href against base and returns an absolute
// http(s) URL. Relative links found on a page resolve against the page URL;
// mailto, javascript, and fragment-only links are rejected.
func ResolveReference(baseURL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", fmt.Errorf("empty or fragment-only link")
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid link: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", resolved.Scheme)
	}
	if resolved.Host == "" {
		return "", fmt.Errorf("link resolves to no host")
	}

	resolved.Fragment = ""
	return resolved.String(), nil
}

// ExtractDomain extracts the domain name from a URL.
// Returns an empty string if the URL is invalid.
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
