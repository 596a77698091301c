package fetcher

import (
	"net/url"
	"strings"
)

// TargetInfo contains parsed target information.
type TargetInfo struct {
	Original string // original target string
	Scheme   string // http or https
	Host     string // hostname without protocol, path, port
	Port     string
	Path     string
	FullURL  string // normalized URL used for the request
}

// ParseTarget parses a target string into structured components. It accepts
// bare hosts (example.com), hosts with ports and full URLs; a missing
// scheme defaults to https since header grading targets web origins.
func ParseTarget(target string) *TargetInfo {
	info := &TargetInfo{Original: target}

	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") {
		parsed, _ = url.Parse("https://" + target)
	}

	if parsed != nil {
		info.Scheme = parsed.Scheme
		info.Host = parsed.Hostname()
		info.Port = parsed.Port()
		info.Path = parsed.Path
		info.FullURL = parsed.String()
	}

	if info.Host == "" {
		host := target
		host = strings.TrimPrefix(host, "http://")
		host = strings.TrimPrefix(host, "https://")
		host = strings.Split(host, "/")[0]
		parts := strings.Split(host, ":")
		info.Host = parts[0]
		if len(parts) > 1 {
			info.Port = parts[1]
		}
		if info.Scheme == "" {
			info.Scheme = "https"
		}
		info.FullURL = info.Scheme + "://" + host
	}

	return info
}

// NormalizeTarget returns a full URL with scheme for the given target.
func NormalizeTarget(target string) string {
	return ParseTarget(target).FullURL
}
