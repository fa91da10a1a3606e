package envstruct_test

import (
	"errors"
	"testing"

	"github.com/myrjola/dailywod/internal/envstruct"
)

func TestPopulate(t *testing.T) {
	type config struct {
		Addr         string `env:"ADDR"`
		SqliteURL    string `env:"SQLITE_URL" envDefault:":memory:"`
		DevMode      bool   `env:"DEV_MODE" envDefault:"false"`
		untagged     string //nolint:unused // verifies untagged fields are skipped.
		unexported   string `env:"UNEXPORTED"` //nolint:unused // verifies we error instead of panic.
		Unsupported  int    `env:"UNSUPPORTED"`
		NoDefaultSet string `env:"NO_DEFAULT"`
	}

	lookupEnv := func(env map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			val, ok := env[key]
			return val, ok
		}
	}

	t.Run("populates strings and bools", func(t *testing.T) {
		var cfg struct {
			Addr    string `env:"ADDR"`
			DevMode bool   `env:"DEV_MODE"`
		}
		err := envstruct.Populate(&cfg, lookupEnv(map[string]string{
			"ADDR":     "localhost:8080",
			"DEV_MODE": "true",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Addr != "localhost:8080" {
			t.Errorf("expected Addr localhost:8080, got %q", cfg.Addr)
		}
		if !cfg.DevMode {
			t.Error("expected DevMode to be true")
		}
	})

	t.Run("falls back to envDefault", func(t *testing.T) {
		var cfg struct {
			SqliteURL string `env:"SQLITE_URL" envDefault:":memory:"`
			DevMode   bool   `env:"DEV_MODE" envDefault:"false"`
		}
		err := envstruct.Populate(&cfg, lookupEnv(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SqliteURL != ":memory:" {
			t.Errorf("expected SqliteURL :memory:, got %q", cfg.SqliteURL)
		}
		if cfg.DevMode {
			t.Error("expected DevMode to default to false")
		}
	})

	t.Run("collects errors for every broken field", func(t *testing.T) {
		var cfg config
		err := envstruct.Populate(&cfg, lookupEnv(map[string]string{
			"ADDR":        "localhost:8080",
			"UNEXPORTED":  "value",
			"UNSUPPORTED": "1",
		}))
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, envstruct.ErrEnvNotSet) {
			t.Errorf("expected ErrEnvNotSet in chain, got %v", err)
		}
		if !errors.Is(err, envstruct.ErrInvalidValue) {
			t.Errorf("expected ErrInvalidValue in chain, got %v", err)
		}
	})

	t.Run("rejects invalid bool", func(t *testing.T) {
		var cfg struct {
			DevMode bool `env:"DEV_MODE"`
		}
		err := envstruct.Populate(&cfg, lookupEnv(map[string]string{"DEV_MODE": "yes please"}))
		if !errors.Is(err, envstruct.ErrInvalidValue) {
			t.Errorf("expected ErrInvalidValue, got %v", err)
		}
	})

	t.Run("rejects non-pointer", func(t *testing.T) {
		var cfg config
		if err := envstruct.Populate(cfg, lookupEnv(nil)); !errors.Is(err, envstruct.ErrInvalidValue) {
			t.Errorf("expected ErrInvalidValue, got %v", err)
		}
	})

	t.Run("rejects pointer to non-struct", func(t *testing.T) {
		s := "string"
		if err := envstruct.Populate(&s, lookupEnv(nil)); !errors.Is(err, envstruct.ErrInvalidValue) {
			t.Errorf("expected ErrInvalidValue, got %v", err)
		}
	})
}
