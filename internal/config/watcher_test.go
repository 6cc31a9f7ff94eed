package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type reloadSettings struct {
	Mode      int `toml:"mode"`
	TimeoutMs int `toml:"timeout_ms"`
}

func loadReloadSettings(path string) (reloadSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reloadSettings{}, err
	}
	var cfg reloadSettings
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeWatchedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "touchkeyd.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := writeWatchedFile(t, "mode = 1\ntimeout_ms = 0\n")

	received := make(chan reloadSettings, 1)
	watcher := NewConfigWatcher(
		path,
		loadReloadSettings,
		newTestLogger(),
		WithDebounce[reloadSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(cfg reloadSettings) {
		received <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	if writeErr := os.WriteFile(path, []byte("mode = 0\ntimeout_ms = 8000\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case cfg := <-received:
		if cfg.Mode != 0 || cfg.TimeoutMs != 8000 {
			t.Errorf("got %+v, want mode=0, timeout_ms=8000", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_FreshConfig(t *testing.T) {
	path := writeWatchedFile(t, "timeout_ms = 1000\n")

	var loadCount atomic.Int32
	loader := func(p string) (reloadSettings, error) {
		loadCount.Add(1)
		return loadReloadSettings(p)
	}

	received := make(chan reloadSettings, 10)
	watcher := NewConfigWatcher(
		path,
		loader,
		newTestLogger(),
		WithDebounce[reloadSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(cfg reloadSettings) {
		received <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if writeErr := os.WriteFile(path, []byte("timeout_ms = 5000\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	<-received

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(path, []byte("timeout_ms = 30000\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	cfg := <-received

	if cfg.TimeoutMs != 30000 {
		t.Errorf("expected timeout_ms=30000, got %d", cfg.TimeoutMs)
	}
	if got := loadCount.Load(); got < 2 {
		t.Errorf("expected at least 2 loads, got %d", got)
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := writeWatchedFile(t, "timeout_ms = 1000\n")

	var count1, count2 atomic.Int32
	watcher := NewConfigWatcher(
		path,
		loadReloadSettings,
		newTestLogger(),
		WithDebounce[reloadSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(_ reloadSettings) {
		count1.Add(1)
	})
	unsub2 := watcher.OnReload(func(_ reloadSettings) {
		count2.Add(1)
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(path, []byte("timeout_ms = 2000\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	unsub2()

	if writeErr := os.WriteFile(path, []byte("timeout_ms = 3000\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count1.Load(); got != 2 {
		t.Errorf("handler1: expected 2 calls, got %d", got)
	}
	if got := count2.Load(); got != 1 {
		t.Errorf("handler2: expected 1 call, got %d", got)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := writeWatchedFile(t, "mode = 1\n")

	errorReceived := make(chan error, 1)
	configReceived := make(chan reloadSettings, 1)

	watcher := NewConfigWatcher(
		path,
		loadReloadSettings,
		newTestLogger(),
		WithDebounce[reloadSettings](50*time.Millisecond),
		WithErrorHandler[reloadSettings](func(err error) {
			errorReceived <- err
		}),
	)

	watcher.OnReload(func(cfg reloadSettings) {
		configReceived <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(path, []byte("invalid toml [[["), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case <-errorReceived:
		// Expected
	case <-configReceived:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := writeWatchedFile(t, "timeout_ms = 0\n")

	var count atomic.Int32
	var lastValue atomic.Int32

	watcher := NewConfigWatcher(
		path,
		loadReloadSettings,
		newTestLogger(),
		WithDebounce[reloadSettings](200*time.Millisecond),
	)

	watcher.OnReload(func(cfg reloadSettings) {
		count.Add(1)
		lastValue.Store(int32(cfg.TimeoutMs))
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	// Rapid changes within one debounce window
	time.Sleep(100 * time.Millisecond)
	for i := 1; i <= 5; i++ {
		if writeErr := os.WriteFile(path, fmt.Appendf(nil, "timeout_ms = %d\n", i*1000), 0o644); writeErr != nil {
			t.Fatal(writeErr)
		}
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
	if got := lastValue.Load(); got != 5000 {
		t.Errorf("expected final timeout_ms 5000, got %d", got)
	}
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := writeWatchedFile(t, "timeout_ms = 1000\n")

	var count atomic.Int32
	watcher := NewConfigWatcher(
		path,
		loadReloadSettings,
		newTestLogger(),
		WithDebounce[reloadSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(_ reloadSettings) {
		count.Add(1)
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}

	time.Sleep(100 * time.Millisecond)

	if stopErr := watcher.Stop(); stopErr != nil {
		t.Fatal(stopErr)
	}

	if writeErr := os.WriteFile(path, []byte("timeout_ms = 9000\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}
