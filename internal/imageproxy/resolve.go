package imageproxy

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// DefaultGateway is the IPFS HTTP gateway used for ipfs:// and bare CIDs.
const DefaultGateway = "https://ipfs.io/ipfs/"

var (
	// ErrMissingURL is returned when no image reference is given.
	ErrMissingURL = errors.New("missing url param")

	// ErrUnsupportedScheme is returned for anything other than http(s).
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

var (
	cidPattern  = regexp.MustCompile(`(?i)^(Qm|bafy)`)
	httpPattern = regexp.MustCompile(`(?i)^https?://`)
)

// ResolveTarget maps an image reference to the URL to fetch, using DefaultGateway.
func ResolveTarget(raw string) (string, error) {
	return resolveTarget(raw, DefaultGateway)
}

func resolveTarget(raw, gateway string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", ErrMissingURL
	}

	if len(target) >= 7 && strings.EqualFold(target[:7], "ipfs://") {
		target = gateway + target[7:]
	}

	// Unparseable references fall through to the scheme check as-is.
	if parsed, err := url.Parse(target); err == nil {
		q := parsed.Query()
		if src := q.Get("src"); src != "" {
			target = src
		} else if cid := q.Get("ipfs"); cid != "" && cidPattern.MatchString(cid) {
			// Non-CID values are usually encoded metadata; keep the wrapper URL.
			target = gateway + cid
		}
	}

	if !httpPattern.MatchString(target) {
		return "", ErrUnsupportedScheme
	}
	return target, nil
}

// RewriteURL returns the relay URL for imageURL as served from host.
// The port is stripped from host. An empty imageURL yields "".
func RewriteURL(host, imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "https://" + host + "/image-proxy?url=" + url.QueryEscape(imageURL)
}
