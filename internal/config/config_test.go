package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ListenAddr != ":8001" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.EarthObs.BufferMeters != 500 {
		t.Errorf("buffer = %d", cfg.EarthObs.BufferMeters)
	}
	if cfg.Redis.TaskQueue != "mapaction:tasks" {
		t.Errorf("task queue = %q", cfg.Redis.TaskQueue)
	}
	if cfg.Redis.ResultTTL != 10*time.Minute {
		t.Errorf("result TTL = %s", cfg.Redis.ResultTTL)
	}
	if len(cfg.Chat.AllowedOrigins) == 0 {
		t.Error("no default allowed origins")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("EARTHOBS_BUFFER_METERS", "250")
	t.Setenv("TASK_RESULT_TTL", "30s")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("CHAT_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.ListenAddr != ":9999" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.EarthObs.BufferMeters != 250 {
		t.Errorf("buffer = %d", cfg.EarthObs.BufferMeters)
	}
	if cfg.Redis.ResultTTL != 30*time.Second {
		t.Errorf("result TTL = %s", cfg.Redis.ResultTTL)
	}
	if !cfg.Storage.UsePathStyle {
		t.Error("path style not enabled")
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Chat.AllowedOrigins) != len(want) {
		t.Fatalf("origins = %v", cfg.Chat.AllowedOrigins)
	}
	for i := range want {
		if cfg.Chat.AllowedOrigins[i] != want[i] {
			t.Errorf("origin %d = %q, want %q", i, cfg.Chat.AllowedOrigins[i], want[i])
		}
	}
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("EARTHOBS_BUFFER_METERS", "not-a-number")
	t.Setenv("TASK_RESULT_TTL", "soon")

	cfg := Load()
	if cfg.EarthObs.BufferMeters != 500 {
		t.Errorf("buffer = %d, want default", cfg.EarthObs.BufferMeters)
	}
	if cfg.Redis.ResultTTL != 10*time.Minute {
		t.Errorf("result TTL = %s, want default", cfg.Redis.ResultTTL)
	}
}
