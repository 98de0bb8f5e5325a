package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrefersFileOverValue(t *testing.T) {
	file := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(file, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	secret, err := Load(Source{Name: "api key", File: file, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-file" {
		t.Fatalf("expected trimmed file secret, got %q", secret)
	}
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("FIT_SCREENER_TEST_KEY", " from-env ")

	secret, err := Load(Source{Name: "api key", Env: "FIT_SCREENER_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-env" {
		t.Fatalf("expected env secret, got %q", secret)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatal("expected error for empty source")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	if _, err := Load(Source{Name: "api key", File: empty}); err == nil {
		t.Fatal("expected error for empty secret file")
	}

	if _, err := Load(Source{File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing secret file")
	}
}
