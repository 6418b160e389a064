package util

import "strings"

const (
	// SchemePrefix is forced onto every probe target.
	SchemePrefix = "https://"
	// DefaultPath is the diagnostic endpoint probed on each domain.
	DefaultPath = "/info.php"
)

// NormalizeTarget turns a raw domain into the URL to probe. It prepends
// https:// unless already present, strips trailing slashes and appends path.
// The host is not validated; a malformed domain fails later at the transport.
func NormalizeTarget(domain, path string) string {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasPrefix(domain, SchemePrefix) {
		domain = SchemePrefix + domain
	}
	domain = strings.TrimRight(domain, "/")
	return domain + path
}
