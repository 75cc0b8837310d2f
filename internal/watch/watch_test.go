package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherStopCleanup(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "Test.java")
	if err := os.WriteFile(testFile, []byte("class Test {}\n"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	w, err := New(Config{DebounceMs: 10, Workers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	watchDone := make(chan struct{})
	go func() {
		w.Watch(ctx, []string{tmpDir})
		close(watchDone)
	}()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(testFile, []byte("class Test { void run() {} }\n"), 0o644); err != nil {
		t.Logf("warning: failed to modify test file: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	w.Stop()

	select {
	case <-watchDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return within 5 seconds")
	}
}

func TestShouldExcludeMatchesAnyPathComponent(t *testing.T) {
	w := &Watcher{excludePatterns: []string{"build", ".git"}}

	if !w.shouldExclude(filepath.Join("repo", "build", "Gen.java")) {
		t.Error("expected path under build/ to be excluded")
	}
	if w.shouldExclude(filepath.Join("repo", "src", "Main.java")) {
		t.Error("did not expect src/ path to be excluded")
	}
}

func TestReanalyzeWithoutStoreIsNoop(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "Test.java")
	if err := os.WriteFile(testFile, []byte("class Test {}\n"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	w, err := New(Config{DebounceMs: 10, Workers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	if err := w.reanalyze(context.Background(), testFile); err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
}
