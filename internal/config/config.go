package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Almaty"

	configPathEnv  = "NEWSRADAR_CONFIG"
	dataDirEnv     = "NEWSRADAR_DATA_DIR"
	databaseDSNEnv = "DATABASE_DSN"
	redisAddrEnv   = "REDIS_ADDR"
	crmBaseURLEnv  = "CRM_API_URL"
	crmTokenEnv    = "CRM_API_TOKEN"
	proxyURLEnv    = "HTTP_PROXY_URL"
)

// Backend names accepted in StorageConfig.
const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
	SeenBackendFile  = "file"
	SeenBackendRedis = "redis"
)

// Config holds high-level settings required across the application.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Sources    []SourceConfig   `yaml:"sources"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	CRM        CRMConfig        `yaml:"crm"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StorageConfig selects and parameterizes the persistence backends.
type StorageConfig struct {
	Backend      string `yaml:"backend"`
	SeenBackend  string `yaml:"seenBackend"`
	DataDir      string `yaml:"dataDir"`
	ArticlesFile string `yaml:"articlesFile"`
	SeenFile     string `yaml:"seenFile"`
	DSN          string `yaml:"dsn"`
	RedisAddr    string `yaml:"redisAddr"`
}

// FetchConfig bounds outbound HTTP behavior.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	MaxPerSource   int     `yaml:"maxPerSource"`
	Workers        int     `yaml:"workers"`
	PerHostRPS     float64 `yaml:"perHostRps"`
	UserAgent      string  `yaml:"userAgent"`
	ProxyURL       string  `yaml:"proxyUrl"`
}

// ClassifierConfig lists categories in priority order; ties between equal
// keyword-hit counts resolve to the earlier category.
type ClassifierConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig binds a category name to its bilingual keyword list.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// SourceConfig describes a single news site. Listings defaults to the base
// URL; Patterns narrows which discovered links count as articles; Selectors,
// when present, switches the source to selector-based extraction.
type SourceConfig struct {
	Name      string          `yaml:"name"`
	URL       string          `yaml:"url"`
	Listings  []string        `yaml:"listings"`
	Patterns  []string        `yaml:"patterns"`
	Selectors *SelectorConfig `yaml:"selectors"`
}

// SelectorConfig holds per-source CSS selectors. Any empty field falls back
// to the generic heuristic for that field.
type SelectorConfig struct {
	Links string `yaml:"links"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Date  string `yaml:"date"`
	Image string `yaml:"image"`
}

// SchedulerConfig defines when scheduled fetch runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	MetricsAddr    string         `yaml:"metricsAddr"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CRMConfig wires the outbound submission sink.
type CRMConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"baseUrl"`
	SubmitPath string `yaml:"submitPath"`
	Token      string `yaml:"token"`
	QueueSize  int    `yaml:"queueSize"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}
	if len(cfg.Classifier.Categories) == 0 {
		cfg.Classifier = defaultConfig().Classifier
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dataDirEnv); v != "" {
		c.Storage.DataDir = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Storage.RedisAddr = v
	}

	if v := os.Getenv(crmBaseURLEnv); v != "" {
		c.CRM.BaseURL = v
	}

	if v := os.Getenv(crmTokenEnv); v != "" {
		c.CRM.Token = v
	}

	if v := os.Getenv(proxyURLEnv); v != "" {
		c.Fetch.ProxyURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Storage.Backend != "" {
		base.Storage.Backend = override.Storage.Backend
	}
	if override.Storage.SeenBackend != "" {
		base.Storage.SeenBackend = override.Storage.SeenBackend
	}
	if override.Storage.DataDir != "" {
		base.Storage.DataDir = override.Storage.DataDir
	}
	if override.Storage.ArticlesFile != "" {
		base.Storage.ArticlesFile = override.Storage.ArticlesFile
	}
	if override.Storage.SeenFile != "" {
		base.Storage.SeenFile = override.Storage.SeenFile
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.RedisAddr != "" {
		base.Storage.RedisAddr = override.Storage.RedisAddr
	}

	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}
	if override.Fetch.MaxPerSource > 0 {
		base.Fetch.MaxPerSource = override.Fetch.MaxPerSource
	}
	if override.Fetch.Workers > 0 {
		base.Fetch.Workers = override.Fetch.Workers
	}
	if override.Fetch.PerHostRPS > 0 {
		base.Fetch.PerHostRPS = override.Fetch.PerHostRPS
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.ProxyURL != "" {
		base.Fetch.ProxyURL = override.Fetch.ProxyURL
	}

	if len(override.Classifier.Categories) > 0 {
		base.Classifier = override.Classifier
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.MetricsAddr != "" {
		base.Scheduler.MetricsAddr = override.Scheduler.MetricsAddr
	}

	if override.CRM.Enabled {
		base.CRM.Enabled = true
	}
	if override.CRM.BaseURL != "" {
		base.CRM.BaseURL = override.CRM.BaseURL
	}
	if override.CRM.SubmitPath != "" {
		base.CRM.SubmitPath = override.CRM.SubmitPath
	}
	if override.CRM.Token != "" {
		base.CRM.Token = override.CRM.Token
	}
	if override.CRM.QueueSize > 0 {
		base.CRM.QueueSize = override.CRM.QueueSize
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Storage: StorageConfig{
			Backend:      BackendJSON,
			SeenBackend:  SeenBackendFile,
			DataDir:      "data",
			ArticlesFile: "news.json",
			SeenFile:     "seen_urls.json",
			RedisAddr:    "localhost:6379",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 20,
			MaxPerSource:   30,
			Workers:        4,
			PerHostRPS:     1,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Classifier: ClassifierConfig{Categories: defaultCategories()},
		Sources:    defaultSources(),
		Scheduler: SchedulerConfig{
			CronExpression: "0 */2 * * *",
			Timezone:       defaultTimezone,
			MetricsAddr:    ":9180",
			location:       tz,
		},
		CRM: CRMConfig{
			Enabled:    false,
			BaseURL:    "http://localhost:8000",
			SubmitPath: "/api/news/submit",
			QueueSize:  256,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func defaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:     "Stan.kz",
			URL:      "https://stan.kz/",
			Patterns: []string{`/news/\d+`, `/\d{4}/\d{2}/`},
		},
		{
			Name:     "Baq.kz",
			URL:      "https://baq.kz/",
			Patterns: []string{`/kz/news/`, `/news/`},
		},
		{
			Name:     "InformBuro",
			URL:      "https://informburo.kz/",
			Patterns: []string{`/novosti/`, `/stati/`},
		},
		{
			Name:     "Orda.kz",
			URL:      "https://orda.kz/",
			Listings: []string{"https://orda.kz/", "https://orda.kz/posts", "https://orda.kz/news"},
			Patterns: []string{`/posts/`, `/\d{4}/`},
		},
		{
			Name:     "Sputnik KZ",
			URL:      "https://ru.sputnik.kz/",
			Patterns: []string{`/\d{8}/`},
		},
		{
			Name:     "24.kz",
			URL:      "https://24.kz/",
			Listings: []string{"https://24.kz/kz/zha-aly-tar"},
			Patterns: []string{`/kz/.*\d+`},
		},
		{
			Name:     "Zakon.kz",
			URL:      "https://kaz.zakon.kz/",
			Patterns: []string{`/doc/`, `/news/`},
		},
	}
}

// defaultCategories is the bilingual keyword table. Keywords match as whole
// words only. Order is significant: it is the tie-break priority between
// categories with equal hit counts.
func defaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{
			Name: "education",
			Keywords: []string{
				"білім", "мектеп", "оқушы", "студент", "мұғалім", "ұстаз",
				"сабақ", "емтихан", "ұбт", "университет", "колледж",
				"образование", "школа", "ученик", "учитель", "экзамен",
				"вуз", "грант",
			},
		},
		{
			Name: "health",
			Keywords: []string{
				"денсаулық", "аурухана", "дәрігер", "емхана", "вакцина",
				"медицина", "здоровье", "больница", "врач", "поликлиника",
				"лечение", "пациент", "эпидемия",
			},
		},
		{
			Name: "family",
			Keywords: []string{
				"отбасы", "бала", "ана", "әке", "неке", "ажырасу",
				"семья", "ребёнок", "дети", "брак", "развод", "материнство",
			},
		},
		{
			Name: "social",
			Keywords: []string{
				"жәрдемақы", "зейнетақы", "әлеуметтік", "мүгедек",
				"жұмыссыздық", "тұрғын үй", "пособие", "пенсия",
				"социальная", "социальный", "льгота", "инвалид",
				"безработица", "жилье",
			},
		},
		{
			Name: "culture",
			Keywords: []string{
				"мәдениет", "театр", "концерт", "мұражай", "өнер",
				"фестиваль", "культура", "музей", "искусство", "наследие",
			},
		},
	}
}
