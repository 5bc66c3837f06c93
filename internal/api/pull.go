package api

import (
	"fmt"
	"net/url"
	"strings"
)

func PullCommand(registryURL, repository, tag string) string {
	return fmt.Sprintf("docker pull %s", PullReference(registryURL, repository, tag))
}

// PullReference renders host/repository:tag. Digests ("sha256:...") are
// joined with "@" instead of ":".
func PullReference(registryURL, repository, tag string) string {
	host := normalizeRegistryHost(registryURL)
	repository = strings.Trim(strings.TrimSpace(repository), "/")
	ref := repository
	if host != "" {
		ref = host + "/" + repository
	}
	tag = strings.TrimSpace(tag)
	switch {
	case tag == "":
		return ref + ":latest"
	case strings.Contains(tag, ":"):
		return ref + "@" + tag
	default:
		return ref + ":" + tag
	}
}

func normalizeRegistryHost(registryURL string) string {
	registryURL = strings.TrimSpace(registryURL)
	if registryURL == "" {
		return ""
	}
	if parsed, err := url.Parse(registryURL); err == nil && parsed.Host != "" {
		registryURL = parsed.Host
	}
	registryURL = strings.Trim(registryURL, "/")
	if slash := strings.Index(registryURL, "/"); slash >= 0 {
		registryURL = registryURL[:slash]
	}
	return registryURL
}
