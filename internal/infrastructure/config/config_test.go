package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_ADMIN_SECRET": "admin-secret",
		"JWT_USER_SECRET":  "user-secret",
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(baseEnv()))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.LoginMaxAttempts != 5 || cfg.Auth.LoginWindow != 15*time.Minute {
		t.Errorf("unexpected throttle defaults: %+v", cfg.Auth)
	}
	if cfg.Store.Driver != DriverMongo {
		t.Errorf("expected mongo driver, got %q", cfg.Store.Driver)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis should be disabled by default, got %q", cfg.Redis.Addr)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("unexpected CORS origins %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.IsProduction() {
		t.Error("development config reported as production")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	env := baseEnv()
	env["ENV"] = "production"
	env["STORE_DRIVER"] = "sqlite"
	env["TOKEN_TTL"] = "1h"
	env["CORS_ORIGINS"] = "https://a.example,https://b.example"

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if !cfg.IsProduction() || cfg.Store.Driver != DriverSQLite || cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoadWith_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secrets": {},
		"equal secrets":   {"JWT_ADMIN_SECRET": "same", "JWT_USER_SECRET": "same"},
		"bad driver":      {"JWT_ADMIN_SECRET": "a", "JWT_USER_SECRET": "b", "STORE_DRIVER": "postgres"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), "config: ") {
				t.Errorf("unexpected error format %q", err)
			}
		})
	}
}
