package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alphabot-ai/qna/internal/auth"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Addr       string
	Store      string
	DBPath     string
	SeedPath   string
	LogLevel   logrus.Level
	TokenTTL   time.Duration
	BcryptCost int
	JWT        auth.Keys
	Censor     Censor
	RateLimits RateLimits
}

type Censor struct {
	APIKey  string
	BaseURL string
}

type RateLimits struct {
	WritePerMinute int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first without overriding variables that are
// already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	addr := envString("QNA_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	cfg := Config{
		Addr:       addr,
		Store:      strings.ToLower(envString("QNA_STORE", StoreMemory)),
		DBPath:     envString("QNA_DB", "qna.db"),
		SeedPath:   envString("QNA_SEED", ""),
		TokenTTL:   envDuration("QNA_TOKEN_TTL", 24*time.Hour),
		BcryptCost: envInt("QNA_BCRYPT_COST", 0),
		Censor: Censor{
			APIKey:  envString("QNA_BAD_WORDS_KEY", ""),
			BaseURL: envString("QNA_BAD_WORDS_URL", "https://api.apilayer.com"),
		},
		RateLimits: RateLimits{
			WritePerMinute: envInt("QNA_RL_WRITE_PER_MIN", 60),
		},
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}

	level, err := logrus.ParseLevel(envString("QNA_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	keys, err := loadKeys()
	if err != nil {
		return Config{}, err
	}
	cfg.JWT = keys

	return cfg, nil
}

func loadKeys() (auth.Keys, error) {
	switch alg := strings.ToUpper(envString("QNA_JWT_ALG", "HS256")); alg {
	case "HS256":
		secret := envString("QNA_JWT_SECRET", "dev-jwt-secret")
		if path := os.Getenv("QNA_JWT_SECRET_FILE"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				return auth.Keys{}, fmt.Errorf("read jwt secret: %w", err)
			}
			secret = strings.TrimSpace(string(raw))
		}
		if secret == "" {
			return auth.Keys{}, errors.New("jwt secret is empty")
		}
		return auth.HMACKeys([]byte(secret)), nil
	case "ES256K":
		path := os.Getenv("QNA_JWT_KEY_FILE")
		if path == "" {
			return auth.Keys{}, errors.New("QNA_JWT_KEY_FILE is required for ES256K")
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return auth.Keys{}, fmt.Errorf("read jwt key: %w", err)
		}
		priv, err := auth.ParseSecp256k1Key(string(raw))
		if err != nil {
			return auth.Keys{}, fmt.Errorf("parse jwt key: %w", err)
		}
		return auth.ES256KKeys(priv), nil
	default:
		return auth.Keys{}, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
