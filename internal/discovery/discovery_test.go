package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWalkFindsJavaFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Zeta.java"), "class Zeta {}")
	writeFile(t, filepath.Join(dir, "Alpha.java"), "class Alpha {}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "irrelevant")

	files, err := Walk(dir, DefaultExcludePatterns())
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 java files", files)
	}
	if filepath.Base(files[0]) != "Alpha.java" || filepath.Base(files[1]) != "Zeta.java" {
		t.Fatalf("files not sorted: %v", files)
	}
}

func TestWalkSkipsExcludedDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "Main.java"), "class Main {}")
	writeFile(t, filepath.Join(dir, "build", "Generated.java"), "class Generated {}")

	files, err := Walk(dir, DefaultExcludePatterns())
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v, want only src/Main.java", files)
	}
}

func TestIsJavaFile(t *testing.T) {
	if !IsJavaFile("Foo.java") {
		t.Fatal("expected .java to match")
	}
	if IsJavaFile("Foo.class") {
		t.Fatal("expected .class not to match")
	}
}
