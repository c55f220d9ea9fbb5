package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/logging"
)

const Production = "production"

const (
	SourceDB   = "db"
	SourceFile = "file"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist in the working directory. When none
// do, it retries from the nearest parent holding a go.mod, so tests run from
// package directories still pick up the repo's .env files.
func LoadEnv(envFiles []string) (int, error) {
	existing := existingFiles("", envFiles)
	if len(existing) == 0 {
		if root, ok := findModuleRoot(); ok {
			existing = existingFiles(root, envFiles)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func existingFiles(dir string, envFiles []string) []string {
	out := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		path := file
		if dir != "" {
			path = filepath.Join(dir, file)
		}
		if fs.FileExists(path) {
			out = append(out, path)
		}
	}
	return out
}

func findModuleRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"orgchart"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type OrgChartOptions struct {
	Source      string        `env:"ORGCHART_SOURCE" envDefault:"db"` // db or file
	SourceFile  string        `env:"ORGCHART_SOURCE_FILE"`
	Cache       string        `env:"ORGCHART_CACHE" envDefault:"memory"` // memory, redis or none
	CacheTTL    time.Duration `env:"ORGCHART_CACHE_TTL" envDefault:"5m"`
	BucketsPath string        `env:"ORGCHART_BUCKETS_PATH"`
	MaxUpload   int64         `env:"ORGCHART_MAX_UPLOAD" envDefault:"33554432"`
}

// Validate normalizes the mode strings and rejects unknown ones.
func (o *OrgChartOptions) Validate(redisURL string) error {
	o.Source = strings.ToLower(strings.TrimSpace(o.Source))
	switch o.Source {
	case SourceDB:
	case SourceFile:
		if strings.TrimSpace(o.SourceFile) == "" {
			return fmt.Errorf("ORGCHART_SOURCE=file requires ORGCHART_SOURCE_FILE")
		}
	default:
		return fmt.Errorf("invalid ORGCHART_SOURCE=%q (expected db|file)", o.Source)
	}

	o.Cache = strings.ToLower(strings.TrimSpace(o.Cache))
	switch o.Cache {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if strings.TrimSpace(redisURL) == "" {
			return fmt.Errorf("ORGCHART_CACHE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("invalid ORGCHART_CACHE=%q (expected memory|redis|none)", o.Cache)
	}
	if o.CacheTTL < 0 {
		return fmt.Errorf("ORGCHART_CACHE_TTL must be non-negative, got %s", o.CacheTTL)
	}
	return nil
}

type Configuration struct {
	Database   DatabaseOptions
	Prometheus PrometheusOptions
	OrgChart   OrgChartOptions

	RedisURL         string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/orgchart.log"`
	// Looked up on every request; a random uuid is generated when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	RealIPHeader    string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile io.Closer
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	return logging.ParseLevel(c.LogLevel)
}

func Use() *Configuration {
	return singleton()
}

// Load builds a fresh configuration from the environment without touching
// the singleton.
func Load() (*Configuration, error) {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.OrgChart.Validate(c.RedisURL); err != nil {
		return fmt.Errorf("orgchart configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
