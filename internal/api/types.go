package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/v1/types"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Status is the last known reachability of a registry.
type Status int

const (
	StatusUnknown Status = iota
	StatusChecking
	StatusOnline
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// ParseStatus maps the backend's status strings onto Status. Anything it
// does not recognise becomes StatusUnknown.
func ParseStatus(value string) Status {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "checking":
		return StatusChecking
	case "online":
		return StatusOnline
	case "offline":
		return StatusOffline
	default:
		return StatusUnknown
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// RegistryEntry is one registry as reported by the status endpoint.
type RegistryEntry struct {
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	Status         Status    `json:"status"`
	LastChecked    time.Time `json:"lastChecked"`
	ResponseTimeMs int64     `json:"responseTime"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
}

// RepositoryInfo is the full metadata of a repository. TotalSize and
// SampleTagsCount are nil when the backend could not compute them.
type RepositoryInfo struct {
	Name            string   `json:"name"`
	TagsCount       int      `json:"tagsCount"`
	Tags            []string `json:"tags"`
	TotalSize       *int64   `json:"totalSize,omitempty"`
	IsEstimate      bool     `json:"isEstimate"`
	SampleTagsCount *int     `json:"sampleTagsCount,omitempty"`
}

// HasSize reports whether the record carries a size figure.
func (i RepositoryInfo) HasSize() bool {
	return i.TotalSize != nil
}

type Manifest struct {
	Digest        string     `json:"digest"`
	MediaType     string     `json:"mediaType"`
	SchemaVersion int        `json:"schemaVersion"`
	Size          int64      `json:"size"`
	Tag           string     `json:"tag,omitempty"`
	Architecture  string     `json:"architecture,omitempty"`
	Created       *time.Time `json:"created,omitempty"`
}

// Kind returns a short label for the manifest's media type.
func (m Manifest) Kind() string {
	switch m.MediaType {
	case ocispec.MediaTypeImageManifest:
		return "oci manifest"
	case ocispec.MediaTypeImageIndex:
		return "oci index"
	case string(types.DockerManifestSchema2):
		return "docker manifest v2"
	case string(types.DockerManifestList):
		return "docker manifest list"
	case string(types.DockerManifestSchema1), string(types.DockerManifestSchema1Signed):
		return "docker manifest v1"
	case "":
		return "-"
	default:
		return m.MediaType
	}
}

// IsIndex reports whether the manifest points at other manifests rather
// than layers.
func (m Manifest) IsIndex() bool {
	return types.MediaType(m.MediaType).IsIndex()
}
