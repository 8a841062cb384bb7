package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "rewards")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != "mysql" || cfg.DBPort != "3306" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTTTL != 168*time.Hour {
		t.Fatalf("jwt ttl=%v", cfg.JWTTTL)
	}
	if len(cfg.CORSAllowedSuffixes) != 1 || cfg.CORSAllowedSuffixes[0] != "vercel.app" {
		t.Fatalf("cors suffixes=%v", cfg.CORSAllowedSuffixes)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	os.Unsetenv("DB_USER")
	os.Unsetenv("JWT_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing required env")
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		want    string
		wantErr bool
	}{
		{"local", "Local", time.Local.String(), false},
		{"empty", "", time.Local.String(), false},
		{"utc", "UTC", "UTC", false},
		{"bogus", "Nowhere/Land", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Timezone: tt.tz}
			loc, err := cfg.Location()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && loc.String() != tt.want {
				t.Fatalf("got=%v want=%v", loc, tt.want)
			}
		})
	}
}
