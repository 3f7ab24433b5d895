// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process settings. Every field can be set through the
// environment or a .env file; cmd flags override them.
type Config struct {
	Addr          string   `env:"ADDR" envDefault:"0.0.0.0:8080"`
	DB            string   `env:"DB" envDefault:"kvdb://testdata/wedding.db"`
	OTLPGRPC      string   `env:"OTLP_GRPC"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"INFO"`
	ServiceName   string   `env:"SERVICE_NAME" envDefault:"wedding"`
	AdminPassword string   `env:"ADMIN_PASSWORD" envDefault:"admin123"`
	StaticDir     string   `env:"STATIC_DIR"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	Location      string   `env:"LOCATION" envDefault:"Local"`
}

const Prefix = "WEDDING_"

// Load reads the given dotenv files, ".env" when none are named, and parses
// the environment into a Config. Missing dotenv files are skipped.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse(env.Options{Prefix: Prefix})
}

func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
