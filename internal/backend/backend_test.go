package backend

import (
	"path/filepath"
	"strings"
	"testing"

	"livrocaixa/internal/config"
)

func TestTypeIsValid(t *testing.T) {
	for _, bt := range Types() {
		if !bt.IsValid() {
			t.Errorf("Type(%q).IsValid() = false", bt)
		}
	}
	for _, s := range []string{"", "postgres", "SQLITE", "json"} {
		if Type(s).IsValid() {
			t.Errorf("Type(%q).IsValid() = true", s)
		}
	}
}

func TestInvalidTypeErrorListsBackends(t *testing.T) {
	_, err := FromAppConfig(&config.Config{DataBackend: "postgres"})
	if err == nil {
		t.Fatal("FromAppConfig with invalid backend succeeded")
	}
	for _, want := range TypeStrings() {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	if err := (Config{Type: "postgres"}).Validate(); err == nil || !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("Validate() error = %v, want the valid backend list", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"file needs path", Config{Type: FileBackend}, true},
		{"file with path", Config{Type: FileBackend, LedgerPath: "/tmp/ledger.json"}, false},
		{"sqlite needs path", Config{Type: SQLiteBackend}, true},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "/tmp/ledger.db"}, false},
		{"unknown type", Config{Type: "postgres"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateStore(t *testing.T) {
	dir := t.TempDir()
	factory := NewFactory(nil)

	tests := []struct {
		name        string
		config      Config
		wantCleanup bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"file", Config{Type: FileBackend, LedgerPath: filepath.Join(dir, "ledger.json")}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ledger.db")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := factory.CreateStore(tt.config)
			if err != nil {
				t.Fatalf("CreateStore: %v", err)
			}
			if result.Store == nil {
				t.Fatal("CreateStore returned nil store")
			}
			if (result.Cleanup != nil) != tt.wantCleanup {
				t.Errorf("cleanup presence = %v, want %v", result.Cleanup != nil, tt.wantCleanup)
			}
			if result.Cleanup != nil {
				if err := result.Cleanup(); err != nil {
					t.Errorf("Cleanup: %v", err)
				}
			}
		})
	}

	if _, err := factory.CreateStore(Config{Type: "postgres"}); err == nil {
		t.Error("CreateStore with invalid type succeeded")
	}
}
