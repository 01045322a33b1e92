package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subtool/internal/config"
)

func TestNewApp(t *testing.T) {
	baseDir := t.TempDir()
	cfg := config.NewConfig(baseDir)

	a, err := NewApp(cfg, "RegenerateEntities")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	t.Run("log records carry the operation name", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(cfg.LogDir, "subtool.log"))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}

		got := string(data)
		if !strings.Contains(got, "run started") {
			t.Errorf("log should contain the startup record, got: %q", got)
		}
		if !strings.Contains(got, "operation=RegenerateEntities") {
			t.Errorf("log records should carry operation=RegenerateEntities, got: %q", got)
		}
	})
}
