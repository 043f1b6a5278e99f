package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"store.sqlite3"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
	CORSOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	ShopName    string `envconfig:"SHOP_NAME" default:"Bayt Alyasmeen Perfumes"`
	ImageDir    string `envconfig:"IMAGE_DIR" default:"./images_perfumes"`
	InvoiceDir  string `envconfig:"INVOICE_DIR" default:"./invoices"`
}

func Load() *Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		logrus.Fatalf("config: %v", err)
	}

	if cfg.DatabaseDSN == "store.sqlite3" {
		logrus.Warn("DATABASE_DSN not set, using local store.sqlite3")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		logrus.Warn("CORS_ALLOWED_ORIGINS not set, allowing the local dev origin only")
	}

	return &cfg
}

// RequireJWTSecret aborts when the secret is unusable. Only the web server
// calls this; the desktop front-end talks to the store directly.
func (c *Config) RequireJWTSecret() {
	if c.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}
	if len(c.JWTSecret) < 32 {
		logrus.Fatal("JWT_SECRET must be at least 32 characters")
	}
}
