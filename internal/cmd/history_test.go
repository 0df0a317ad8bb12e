package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerpa-project/p4check/internal/history"
)

func TestHistoryCommandNoDatabase(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "history:\n  enabled: true\n  db_path: " + filepath.Join(t.TempDir(), "none.db") + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := execute(t, "history", "--config", configPath)
	if err == nil {
		t.Error("Execute() error = nil, want missing-database error")
	}
}

func TestHistoryCommandListsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	rec := history.Run{TestName: "vlans/snvs", Compiler: "./p4c-of", Outcome: "completed", Duration: time.Second}
	if err := store.RecordRun(context.Background(), rec); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	store.Close()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "history:\n  enabled: true\n  db_path: " + dbPath + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := execute(t, "history", "--config", configPath); err != nil {
		t.Errorf("Execute() error = %v, want nil", err)
	}
}

func TestHistoryCommandRejectsArguments(t *testing.T) {
	if err := execute(t, "history", "extra"); err == nil {
		t.Error("Execute() error = nil, want unexpected-argument error")
	}
}
