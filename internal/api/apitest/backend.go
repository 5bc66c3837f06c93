// Package apitest runs an in-process reglite backend for tests.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/scottbass3/reglite/internal/api"
)

type failure struct {
	code    int
	message string
	garbage bool
}

// Backend is a scripted fake of the reglite HTTP API. Status responses are
// served frame by frame: the n-th status request gets frame n, and the last
// frame repeats once the script runs out.
type Backend struct {
	mu        sync.Mutex
	frames    [][]api.RegistryEntry
	repos     map[string][]string
	tags      map[string][]string
	infos     map[string]api.RepositoryInfo
	manifests map[string]api.Manifest
	failures  map[string]failure
	calls     map[string]int
	requests  []string
	deleted   []string
	requestID []string
}

func NewBackend() *Backend {
	return &Backend{
		repos:     map[string][]string{},
		tags:      map[string][]string{},
		infos:     map[string]api.RepositoryInfo{},
		manifests: map[string]api.Manifest{},
		failures:  map[string]failure{},
		calls:     map[string]int{},
	}
}

// Start serves the backend until the test ends and returns its URL.
func (b *Backend) Start(t testing.TB) string {
	t.Helper()
	server := httptest.NewServer(b.Router())
	t.Cleanup(server.Close)
	return server.URL
}

func (b *Backend) SetStatuses(frames ...[]api.RegistryEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = frames
}

func (b *Backend) SetRepositories(registry string, repos ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.repos[registry] = repos
}

func (b *Backend) SetTags(registry, repository string, tags ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tags[key(registry, repository)] = tags
}

func (b *Backend) SetInfo(registry string, info api.RepositoryInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.infos[key(registry, info.Name)] = info
}

func (b *Backend) SetManifest(registry, repository, tag string, manifest api.Manifest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.manifests[key(registry, repository)+":"+tag] = manifest
}

// Fail makes every request to path answer with code and {"error": message}.
func (b *Backend) Fail(path string, code int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = failure{code: code, message: message}
}

// Break makes path answer 200 with a body that is not JSON.
func (b *Backend) Break(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = failure{code: http.StatusOK, garbage: true}
}

// Heal removes a failure installed by Fail or Break.
func (b *Backend) Heal(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, path)
}

// Calls counts requests by "METHOD /path".
func (b *Backend) Calls(methodPath string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[methodPath]
}

// Requests lists every request as "METHOD /path?query" in arrival order.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *Backend) Deleted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deleted...)
}

func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestID...)
}

func (b *Backend) Router() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(b.record)
	v1 := r.Group("/api/v1")
	v1.GET("/registries", b.registries)
	v1.GET("/registries/status", b.statuses)
	v1.POST("/registries/validate", b.validate)
	v1.GET("/repositories", b.repositories)
	v1.GET("/repository/info", b.repositoryInfo)
	v1.GET("/tags", b.listTags)
	v1.GET("/manifest", b.manifest)
	v1.DELETE("/manifest", b.deleteManifest)
	return r
}

func (b *Backend) record(c *gin.Context) {
	path := strings.TrimPrefix(c.Request.URL.Path, "/api/v1")
	b.mu.Lock()
	b.calls[c.Request.Method+" "+path]++
	b.requests = append(b.requests, c.Request.Method+" "+path+"?"+c.Request.URL.RawQuery)
	b.requestID = append(b.requestID, c.GetHeader("X-Request-ID"))
	f, failing := b.failures[path]
	b.mu.Unlock()

	if failing {
		if f.garbage {
			c.Data(f.code, "text/html", []byte("<html>bad gateway</html>"))
		} else {
			c.JSON(f.code, gin.H{"error": f.message})
		}
		c.Abort()
		return
	}
	c.Next()
}

func (b *Backend) currentFrame() []api.RegistryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return []api.RegistryEntry{}
	}
	n := b.calls["GET /registries/status"] - 1
	if n >= len(b.frames) {
		n = len(b.frames) - 1
	}
	if n < 0 {
		n = 0
	}
	return b.frames[n]
}

func (b *Backend) registries(c *gin.Context) {
	frame := b.currentFrame()
	names := make([]string, 0, len(frame))
	for _, entry := range frame {
		names = append(names, entry.Name)
	}
	c.JSON(http.StatusOK, gin.H{"registries": names})
}

func (b *Backend) statuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"registries": b.currentFrame()})
}

func (b *Backend) validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Validation started", "status": "running"})
}

func (b *Backend) repositories(c *gin.Context) {
	registry := c.Query("registry")
	if registry == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Registry parameter is required"})
		return
	}
	b.mu.Lock()
	repos, ok := b.repos[registry]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Registry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repositories": repos})
}

func (b *Backend) repositoryInfo(c *gin.Context) {
	b.mu.Lock()
	info, ok := b.infos[key(c.Query("registry"), c.Query("repository"))]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (b *Backend) listTags(c *gin.Context) {
	repository := c.Query("repository")
	b.mu.Lock()
	tags, ok := b.tags[key(c.Query("registry"), repository)]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": repository, "tags": tags})
}

func (b *Backend) manifest(c *gin.Context) {
	b.mu.Lock()
	manifest, ok := b.manifests[key(c.Query("registry"), c.Query("repository"))+":"+c.Query("tag")]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manifest not found"})
		return
	}
	c.JSON(http.StatusOK, manifest)
}

func (b *Backend) deleteManifest(c *gin.Context) {
	digest := c.Query("digest")
	if digest == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Digest parameter is required"})
		return
	}
	registry, repository := c.Query("registry"), c.Query("repository")
	b.mu.Lock()
	b.deleted = append(b.deleted, key(registry, repository)+"@"+digest)
	prefix := key(registry, repository) + ":"
	for ref, manifest := range b.manifests {
		if strings.HasPrefix(ref, prefix) && manifest.Digest == digest {
			delete(b.manifests, ref)
			tag := strings.TrimPrefix(ref, prefix)
			b.tags[key(registry, repository)] = without(b.tags[key(registry, repository)], tag)
		}
	}
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}

func key(registry, repository string) string {
	return registry + "\x00" + repository
}

func without(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
