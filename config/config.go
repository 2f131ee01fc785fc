package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI  = "mongodb://127.0.0.1:27017"
	defaultDatabase  = "social-media-app"
	defaultPort      = "8080"
	defaultRateLimit = 60
)

var ErrMissingSecret = errors.New("config: JWT_SECRET must be set")

type Config struct {
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	// JWTTTL is zero unless JWT_TTL is set; tokens then carry no expiry.
	JWTTTL      time.Duration
	Port        string
	ReleaseMode bool
	CORSOrigins []string
	RateLimit   int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		MongoURI:      getenv("MONGODB_URI"),
		MongoDatabase: getenv("MONGODB_DATABASE"),
		JWTSecret:     getenv("JWT_SECRET"),
		Port:          getenv("PORT"),
		ReleaseMode:   getenv("GIN_MODE") == "release",
		RateLimit:     defaultRateLimit,
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = getenv("TOKEN_SECRET")
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = defaultMongoURI
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = defaultDatabase
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if v := getenv("JWT_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl < 0 {
			return nil, fmt.Errorf("config: invalid JWT_TTL %q", v)
		}
		cfg.JWTTTL = ttl
	}

	if v := getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid RATE_LIMIT_PER_MINUTE %q", v)
		}
		cfg.RateLimit = n
	}

	if v := getenv("CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:8080"}
	}

	return cfg, nil
}
