package api

import "testing"

func TestPullReference(t *testing.T) {
	tests := []struct {
		name        string
		registryURL string
		repository  string
		tag         string
		want        string
	}{
		{
			name:        "registry url host is normalized",
			registryURL: "https://registry.example.com",
			repository:  "team/service",
			tag:         "v1.2.3",
			want:        "registry.example.com/team/service:v1.2.3",
		},
		{
			name:        "empty tag defaults to latest",
			registryURL: "registry.example.com:5000",
			repository:  "service",
			want:        "registry.example.com:5000/service:latest",
		},
		{
			name:        "digest uses at sign",
			registryURL: "http://10.0.0.1:5000/v2/",
			repository:  "/team/service/",
			tag:         "sha256:abc",
			want:        "10.0.0.1:5000/team/service@sha256:abc",
		},
		{
			name:       "no registry host",
			repository: "library/nginx",
			tag:        "alpine",
			want:       "library/nginx:alpine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PullReference(tt.registryURL, tt.repository, tt.tag)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPullCommand(t *testing.T) {
	got := PullCommand("registry.example.com", "app", "v1")
	want := "docker pull registry.example.com/app:v1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
