package api

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

func cloneHeader(header http.Header) map[string][]string {
	if len(header) == 0 {
		return nil
	}
	out := make(map[string][]string, len(header))
	for key, values := range header {
		copied := make([]string, len(values))
		copy(copied, values)
		out[key] = copied
	}
	return out
}

func resolveURL(base *url.URL, p string, query url.Values) string {
	if base == nil {
		parsed, err := url.Parse(p)
		if err != nil {
			return p
		}
		parsed.RawQuery = encodeQuery(query)
		return parsed.String()
	}
	resolved := *base
	resolved.Path = strings.TrimSuffix(resolved.Path, "/") + p
	resolved.RawQuery = encodeQuery(query)
	return resolved.String()
}

func encodeQuery(query url.Values) string {
	if query == nil {
		return ""
	}
	return query.Encode()
}

// ParseBaseURL normalizes a backend address. A bare host gets "http://"
// when it is loopback or on a private network and "https://" otherwise.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, Preconditionf("api url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = defaultScheme(raw) + "://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Host == "" {
		return nil, Preconditionf("api url %q has no host", raw)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed, nil
}

func defaultScheme(hostport string) string {
	host := hostport
	if slash := strings.Index(host, "/"); slash >= 0 {
		host = host[:slash]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" {
		return "http"
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate()) {
		return "http"
	}
	return "https"
}
