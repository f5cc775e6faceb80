package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "/tmp/custom-cache", filepath.Join("/tmp/custom-cache", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			dir, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if dir != tt.want {
				t.Errorf("cacheDir() = %q, want %q", dir, tt.want)
			}
		})
	}
}

func TestCacheOptsRedis(t *testing.T) {
	t.Setenv(redisEnv, "redis://env:6379")
	if got := (cacheOpts{}).redis(); got != "redis://env:6379" {
		t.Errorf("env fallback = %q", got)
	}
	if got := (cacheOpts{redisURL: "redis://flag:6379"}).redis(); got != "redis://flag:6379" {
		t.Errorf("flag = %q, want the flag to win", got)
	}
}
