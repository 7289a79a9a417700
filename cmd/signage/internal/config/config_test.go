package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv(APIEnv, "")
	dir := t.TempDir()

	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := &Resolved{
		Root:             dir,
		Layout:           filepath.Join(dir, "layout.xml"),
		StaticRoot:       "/static",
		APIBase:          DefaultAPI,
		Timeout:          DefaultTimeout,
		Listen:           DefaultListen,
		DepartmentPeriod: time.Second,
		ContentPeriod:    30 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_YAML(t *testing.T) {
	t.Setenv(APIEnv, "")
	dir := t.TempDir()
	writeFile(t, dir, "signage.yaml", `
display:
  layout: screens/lobby.yaml
  schema: "1.0"
  static_dir: /srv/static
  media_dir: media
api:
  base: https://signage.example.org
  timeout: 3s
server:
  listen: 127.0.0.1:9000
  reload: 1m
refresh:
  content: 2m
`)

	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Layout != filepath.Join(dir, "screens/lobby.yaml") {
		t.Errorf("Layout = %q", got.Layout)
	}
	if got.StaticDir != "/srv/static" || got.MediaDir != filepath.Join(dir, "media") {
		t.Errorf("dirs = %q, %q", got.StaticDir, got.MediaDir)
	}
	if got.APIBase != "https://signage.example.org" || got.Timeout != 3*time.Second {
		t.Errorf("api = %q, %v", got.APIBase, got.Timeout)
	}
	if got.Listen != "127.0.0.1:9000" || got.Reload != time.Minute {
		t.Errorf("server = %q, %v", got.Listen, got.Reload)
	}
	if got.ContentPeriod != 2*time.Minute || got.DepartmentPeriod != DefaultDepartmentPeriod {
		t.Errorf("refresh = %v, %v", got.DepartmentPeriod, got.ContentPeriod)
	}
}

func TestResolve_TOML(t *testing.T) {
	t.Setenv(APIEnv, "")
	dir := t.TempDir()
	writeFile(t, dir, "signage.toml", `
[api]
base = "http://backend:8000"

[refresh]
department = "5s"
`)

	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.APIBase != "http://backend:8000" || got.DepartmentPeriod != 5*time.Second {
		t.Errorf("got %+v", got)
	}
}

func TestResolve_EnvOverridesAPI(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "signage.yaml", "api:\n  base: http://from-file\n")
	t.Setenv(APIEnv, "http://from-env")

	got, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.APIBase != "http://from-env" {
		t.Errorf("APIBase = %q", got.APIBase)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"unknown yaml key", map[string]string{"signage.yaml": "display:\n  layuot: x.xml\n"}, "layuot"},
		{"unknown toml key", map[string]string{"signage.toml": "[server]\nport = 80\n"}, "server.port"},
		{"both formats", map[string]string{"signage.yaml": "", "signage.toml": ""}, "conflicting"},
		{"bad duration", map[string]string{"signage.yaml": "api:\n  timeout: soon\n"}, "api.timeout"},
		{"negative duration", map[string]string{"signage.yaml": "refresh:\n  content: -1s\n"}, "refresh.content"},
		{"bad schema", map[string]string{"signage.yaml": "display:\n  schema: latest\n"}, "semantic version"},
		{"future schema", map[string]string{"signage.yaml": "display:\n  schema: v2.0.0\n"}, "not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			_, err := Resolve(dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadOptional_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "signage.yml", "")
	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if diff := cmp.Diff(&Config{}, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
