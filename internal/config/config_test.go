package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingIsNotError(t *testing.T) {
	base := Default()
	got, err := LoadFile(filepath.Join(t.TempDir(), "nope.jsonc"), base)
	if err != nil {
		t.Fatalf("LoadFile() = %v, want nil", err)
	}
	if got != base {
		t.Fatalf("LoadFile() = %+v, want unchanged %+v", got, base)
	}
}

func TestLoadFileJSONCWithComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.jsonc")
	body := `{
		// three localities for this run
		"directory_addr": "http://directory:9000",
		"locality_count": 3,
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	got, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if got.DirectoryAddr != "http://directory:9000" || got.LocalityCount != 3 {
		t.Fatalf("LoadFile() = %+v, want directory_addr/locality_count set", got)
	}
	if got.Listen != Default().Listen {
		t.Fatalf("LoadFile() overwrote unset field Listen = %q", got.Listen)
	}
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("LOCALITY_DIRECTORY_ADDR", "http://d:1")
	t.Setenv("LOCALITY_PUBLIC_ADDR", "http://me:2")

	got := LoadEnv(Default())
	if got.DirectoryAddr != "http://d:1" || got.PublicAddr != "http://me:2" {
		t.Fatalf("LoadEnv() = %+v, want overlaid addrs", got)
	}
}

func TestValidateRequiresAddrs(t *testing.T) {
	if err := Validate(Default()); err == nil {
		t.Fatal("Validate(Default()) = nil, want error (missing directory/public addr)")
	}
	cfg := Default()
	cfg.DirectoryAddr = "http://d:1"
	cfg.PublicAddr = "http://me:2"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
