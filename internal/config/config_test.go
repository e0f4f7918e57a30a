package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFinalize_Defaults(t *testing.T) {
	cfg := &Server{}
	cfg.Finalize()

	if cfg.Name != DefaultName {
		t.Errorf("Name = %q, want %q", cfg.Name, DefaultName)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Output != "_site" {
		t.Errorf("Output = %q, want _site", cfg.Output)
	}
	if cfg.InjectedFolderName != ".11ty" {
		t.Errorf("InjectedFolderName = %q, want .11ty", cfg.InjectedFolderName)
	}
	if cfg.PortRetryLimit != 10 {
		t.Errorf("PortRetryLimit = %d, want 10", cfg.PortRetryLimit)
	}
	if cfg.PathPrefix != "/" {
		t.Errorf("PathPrefix = %q, want /", cfg.PathPrefix)
	}
	if !cfg.ReloadEnabled() {
		t.Error("ReloadEnabled() = false, want true by default")
	}
	if cfg.WatchEnabled() {
		t.Error("WatchEnabled() = true, want false by default")
	}
}

func TestFinalize_ExplicitFalseSurvives(t *testing.T) {
	enabled := false
	cfg := &Server{Enabled: &enabled}
	cfg.Finalize()

	if cfg.ReloadEnabled() {
		t.Error("explicit enabled=false should survive Finalize")
	}
}

func TestNormalizePathPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"blog", "/blog/"},
		{"/blog", "/blog/"},
		{"blog/", "/blog/"},
		{"/blog/", "/blog/"},
		{"/a/b", "/a/b/"},
	}

	for _, tt := range tests {
		if got := NormalizePathPrefix(tt.in); got != tt.want {
			t.Errorf("NormalizePathPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `{"name":"docs","port":9000,"output":"dist","pathPrefix":"docs","enabled":false}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Finalize()

	if cfg.Name != "docs" {
		t.Errorf("Name = %q, want docs", cfg.Name)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.Output != "dist" {
		t.Errorf("Output = %q, want dist", cfg.Output)
	}
	if cfg.PathPrefix != "/docs/" {
		t.Errorf("PathPrefix = %q, want /docs/", cfg.PathPrefix)
	}
	if cfg.ReloadEnabled() {
		t.Error("enabled=false in file should disable reload")
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail on malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Server{Port: 70000}
	cfg.Output = "dist"
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range port should fail validation")
	}

	cfg = &Server{}
	if err := cfg.Validate(); err == nil {
		t.Error("empty output should fail validation")
	}
}
