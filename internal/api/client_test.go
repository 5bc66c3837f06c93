package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/api/apitest"
)

const testDigest = "sha256:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newGateway(t *testing.T, backend *apitest.Backend, opts ...api.Option) *api.Gateway {
	t.Helper()
	gw, err := api.New(backend.Start(t), opts...)
	require.NoError(t, err)
	return gw
}

func TestRegistryStatusesDecodesEntries(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	checked := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	backend.SetStatuses([]api.RegistryEntry{
		{Name: "a", URL: "https://a.example", Status: api.StatusOnline, LastChecked: checked, ResponseTimeMs: 42},
		{Name: "b", URL: "https://b.example", Status: api.StatusOffline, ErrorMessage: "connection refused"},
	})
	gw := newGateway(t, backend)

	entries, err := gw.RegistryStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, api.StatusOnline, entries[0].Status)
	assert.Equal(t, int64(42), entries[0].ResponseTimeMs)
	assert.True(t, checked.Equal(entries[0].LastChecked))
	assert.Equal(t, api.StatusOffline, entries[1].Status)
	assert.Equal(t, "connection refused", entries[1].ErrorMessage)
}

func TestAPIErrorCarriesBackendMessage(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.Fail("/repositories", http.StatusInternalServerError, "registry exploded")
	gw := newGateway(t, backend)

	_, err := gw.Repositories(context.Background(), "a")
	require.Error(t, err)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "registry exploded", apiErr.Message)
	assert.False(t, api.IsTransport(err))
}

func TestUndecodableBodyIsTransportFailure(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.Break("/registries/status")
	gw := newGateway(t, backend)

	_, err := gw.RegistryStatuses(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
}

func TestUnreachableBackendIsTransportFailure(t *testing.T) {
	t.Parallel()

	var logged []api.RequestLog
	gw, err := api.New("http://127.0.0.1:1", api.WithTimeout(time.Second), api.WithRequestLogger(func(entry api.RequestLog) {
		logged = append(logged, entry)
	}))
	require.NoError(t, err)

	_, err = gw.RegistryNames(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))

	require.Len(t, logged, 1)
	assert.Zero(t, logged[0].Status)
	assert.NotEmpty(t, logged[0].Err)
	assert.True(t, logged[0].Failed())
}

func TestRepositoriesAndTags(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.SetRepositories("a", "zeta", "alpha")
	backend.SetTags("a", "alpha", "v2", "v1", "latest")
	gw := newGateway(t, backend)

	repos, err := gw.Repositories(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, repos)

	tags, err := gw.Tags(context.Background(), "a", "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v1", "latest"}, tags)
}

func TestRepositoryInfoOptionalFields(t *testing.T) {
	t.Parallel()

	size := int64(2048)
	backend := apitest.NewBackend()
	backend.SetInfo("a", api.RepositoryInfo{Name: "sized", Tags: []string{"v1", "v2"}, TotalSize: &size})
	backend.SetInfo("a", api.RepositoryInfo{Name: "bare", TagsCount: 3})
	gw := newGateway(t, backend)

	sized, err := gw.RepositoryInfo(context.Background(), "a", "sized")
	require.NoError(t, err)
	assert.Equal(t, 2, sized.TagsCount)
	require.True(t, sized.HasSize())
	assert.Equal(t, size, *sized.TotalSize)
	assert.Nil(t, sized.SampleTagsCount)

	bare, err := gw.RepositoryInfo(context.Background(), "a", "bare")
	require.NoError(t, err)
	assert.False(t, bare.HasSize())
	assert.Equal(t, 3, bare.TagsCount)
}

func TestDeleteManifestWithoutDigestSendsNothing(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	gw := newGateway(t, backend)

	for _, digest := range []string{"", "latest", "sha256:xyz"} {
		err := gw.DeleteManifest(context.Background(), "a", "app", digest)
		require.Error(t, err, digest)
		assert.True(t, api.IsPrecondition(err), digest)
	}
	assert.Empty(t, backend.Requests())
}

func TestDeleteManifestByDigest(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.SetTags("a", "app", "v1")
	backend.SetManifest("a", "app", "v1", api.Manifest{Digest: testDigest})
	gw := newGateway(t, backend)

	require.NoError(t, gw.DeleteManifest(context.Background(), "a", "app", testDigest))
	assert.Equal(t, []string{"a\x00app@" + testDigest}, backend.Deleted())

	requests := backend.Requests()
	require.Len(t, requests, 1)
	assert.True(t, strings.HasPrefix(requests[0], "DELETE /manifest?"))
	assert.Contains(t, requests[0], "digest=sha256%3A")
}

func TestEveryRequestCarriesRequestID(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.SetStatuses([]api.RegistryEntry{{Name: "a"}})
	var logged []api.RequestLog
	gw := newGateway(t, backend, api.WithRequestLogger(func(entry api.RequestLog) {
		logged = append(logged, entry)
	}))

	_, err := gw.RegistryStatuses(context.Background())
	require.NoError(t, err)
	require.NoError(t, gw.TriggerValidation(context.Background()))

	ids := backend.RequestIDs()
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])

	require.Len(t, logged, 2)
	assert.Equal(t, ids[0], logged[0].ID)
	assert.Equal(t, http.MethodPost, logged[1].Method)
	assert.Equal(t, http.StatusOK, logged[1].Status)
	assert.False(t, logged[1].Failed())
	assert.Empty(t, logged[1].Err)
}

func TestManifestDefaultsTag(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.SetManifest("a", "app", "v1", api.Manifest{
		Digest:        testDigest,
		MediaType:     "application/vnd.oci.image.manifest.v1+json",
		SchemaVersion: 2,
		Size:          512,
		Architecture:  "amd64",
	})
	gw := newGateway(t, backend)

	manifest, err := gw.Manifest(context.Background(), "a", "app", "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", manifest.Tag)
	assert.Equal(t, "oci manifest", manifest.Kind())
	assert.Equal(t, "amd64", manifest.Architecture)
}
