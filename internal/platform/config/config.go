// internal/platform/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
)

// knownSources son las fuentes con entrada propia en la configuración.
var knownSources = []string{
	domain.SourceDuckDuckGo,
	domain.SourceBing,
	domain.SourceWhois,
	domain.SourceIPInfo,
	domain.SourceHunter,
	domain.SourceHIBP,
	domain.SourceWebContent,
}

type Config struct {
	// App
	Query        string
	ExtractURL   string
	TimeoutS     int // segundos por fuente
	MaxResults   int
	LogLevel     string
	PrintVersion bool
	ConfigFile   string

	// IO
	JSONFile      string
	TableDisabled bool

	// Export
	WebhookURL     string
	HistoryDB      string
	HistoryEnabled bool
	ShowHistory    bool

	// Sources: configuración por fuente; los overrides de CLI se aplican
	// encima de la tabla de habilitación del clasificador.
	Sources map[string]ports.SourceConfig

	// SourceOverrides registra qué fuentes fueron forzadas por flag, para
	// distinguir "flag ausente" de "deshabilitada explícitamente".
	SourceOverrides map[string]bool
}

// fileConfig es la forma del archivo YAML de configuración.
type fileConfig struct {
	Timeout    int    `yaml:"timeout"`
	MaxResults int    `yaml:"max_results"`
	LogLevel   string `yaml:"log_level"`
	JSONFile   string `yaml:"json_file"`
	NoTable    bool   `yaml:"no_table"`
	WebhookURL string `yaml:"webhook_url"`
	HistoryDB  string `yaml:"history_db"`
	NoHistory  bool   `yaml:"no_history"`

	APIKeys map[string]string `yaml:"api_keys"`

	Sources map[string]struct {
		Enabled    *bool   `yaml:"enabled"`
		Timeout    int     `yaml:"timeout"`
		RateLimit  float64 `yaml:"rate_limit"`
		MaxResults int     `yaml:"max_results"`
	} `yaml:"sources"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	sources := make(map[string]ports.SourceConfig, len(knownSources))
	for _, name := range knownSources {
		sc := ports.DefaultSourceConfig()
		// 0 = heredar el valor global; normalize los rellena al final.
		sc.Timeout = 0
		sc.MaxResults = 0
		sources[name] = sc
	}

	return Config{
		TimeoutS:        30,
		MaxResults:      10,
		LogLevel:        "info",
		HistoryDB:       defaultHistoryPath(),
		HistoryEnabled:  true,
		Sources:         sources,
		SourceOverrides: map[string]bool{},
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "intelsleuth.db"
	}
	return home + "/.intelsleuth/history.db"
}

// Load inicializa la configuración por capas: defaults, archivo YAML,
// variables de entorno y flags de CLI, en orden creciente de prioridad.
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	// Primer pase de flags solo para localizar -config
	if path := configFlagValue(args); path != "" {
		cfg.ConfigFile = path
	}
	if cfg.ConfigFile != "" {
		if err := loadFromFile(&cfg, cfg.ConfigFile); err != nil {
			return cfg, fmt.Errorf("%w: %v", domain.ErrConfigLoadFailed, err)
		}
	}

	loadFromEnv(&cfg)
	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}

	normalize(&cfg)
	return cfg, nil
}

// configFlagValue extrae el valor de -config/--config sin parsear el resto.
func configFlagValue(args []string) string {
	for i, arg := range args {
		trimmed := strings.TrimLeft(arg, "-")
		if trimmed == "config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(trimmed, "config=") {
			return strings.TrimPrefix(trimmed, "config=")
		}
	}
	return ""
}

// loadFromFile aplica el archivo YAML sobre los defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid yaml in %s: %w", path, err)
	}

	if fc.Timeout > 0 {
		cfg.TimeoutS = fc.Timeout
	}
	if fc.MaxResults > 0 {
		cfg.MaxResults = fc.MaxResults
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.JSONFile != "" {
		cfg.JSONFile = fc.JSONFile
	}
	if fc.NoTable {
		cfg.TableDisabled = true
	}
	if fc.WebhookURL != "" {
		cfg.WebhookURL = fc.WebhookURL
	}
	if fc.HistoryDB != "" {
		cfg.HistoryDB = fc.HistoryDB
	}
	if fc.NoHistory {
		cfg.HistoryEnabled = false
	}

	for name, key := range fc.APIKeys {
		if sc, ok := cfg.Sources[name]; ok {
			sc.APIKey = key
			cfg.Sources[name] = sc
		}
	}

	for name, fsc := range fc.Sources {
		sc, ok := cfg.Sources[name]
		if !ok {
			continue
		}
		if fsc.Enabled != nil {
			sc.Enabled = *fsc.Enabled
			cfg.SourceOverrides[name] = *fsc.Enabled
		}
		if fsc.Timeout > 0 {
			sc.Timeout = time.Duration(fsc.Timeout) * time.Second
		}
		if fsc.RateLimit > 0 {
			sc.RateLimit = fsc.RateLimit
		}
		if fsc.MaxResults > 0 {
			sc.MaxResults = fsc.MaxResults
		}
		cfg.Sources[name] = sc
	}

	return nil
}

// loadFromEnv carga configuración desde variables de entorno.
// Las claves de API solo se aceptan por ENV o archivo, nunca por flag,
// para que no queden en el historial de la shell.
func loadFromEnv(cfg *Config) {
	if v := getenv("INTELSLEUTH_TIMEOUT", ""); v != "" {
		cfg.TimeoutS = parseInt(v, cfg.TimeoutS)
	}
	if v := getenv("INTELSLEUTH_MAX_RESULTS", ""); v != "" {
		cfg.MaxResults = parseInt(v, cfg.MaxResults)
	}
	if v := getenv("INTELSLEUTH_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("INTELSLEUTH_WEBHOOK_URL", ""); v != "" {
		cfg.WebhookURL = v
	}
	if v := getenv("INTELSLEUTH_HISTORY_DB", ""); v != "" {
		cfg.HistoryDB = v
	}
	if v := getenv("INTELSLEUTH_NO_HISTORY", ""); v != "" {
		cfg.HistoryEnabled = !parseBool(v)
	}

	// Claves de API: INTELSLEUTH_HUNTER_API_KEY, etc.
	envKeys := map[string]string{
		domain.SourceHunter: "INTELSLEUTH_HUNTER_API_KEY",
		domain.SourceHIBP:   "INTELSLEUTH_HIBP_API_KEY",
		domain.SourceIPInfo: "INTELSLEUTH_IPINFO_TOKEN",
	}
	for name, envVar := range envKeys {
		if v := getenv(envVar, ""); v != "" {
			sc := cfg.Sources[name]
			sc.APIKey = v
			cfg.Sources[name] = sc
		}
	}

	// Habilitación por fuente: INTELSLEUTH_SOURCES_HIBP_ENABLED=false
	for name := range cfg.Sources {
		key := fmt.Sprintf("INTELSLEUTH_SOURCES_%s_ENABLED", strings.ToUpper(name))
		if v := getenv(key, ""); v != "" {
			enabled := parseBool(v)
			sc := cfg.Sources[name]
			sc.Enabled = enabled
			cfg.Sources[name] = sc
			cfg.SourceOverrides[name] = enabled
		}
	}
}

// loadFromFlags parsea los flags de CLI sobre la configuración acumulada.
func loadFromFlags(cfg *Config, args []string) error {
	flags := pflag.NewFlagSet("intelsleuth", pflag.ContinueOnError)

	flags.StringVar(&cfg.Query, "query", cfg.Query, "Consulta a investigar (email, dominio, IP, nombre...)")
	flags.StringVar(&cfg.ExtractURL, "extract-url", cfg.ExtractURL, "Extraer texto legible de una URL y salir")
	flags.IntVar(&cfg.TimeoutS, "timeout", cfg.TimeoutS, "Timeout por fuente en segundos")
	flags.IntVar(&cfg.MaxResults, "max-results", cfg.MaxResults, "Máximo de resultados por motor de búsqueda")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Nivel de log (debug|info|warn|error|silent)")
	flags.BoolVar(&cfg.PrintVersion, "version", false, "Imprimir versión y salir")
	flags.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Ruta del archivo de configuración YAML")

	flags.StringVar(&cfg.JSONFile, "json-file", cfg.JSONFile, "Escribir el reporte JSON en esta ruta")
	flags.BoolVar(&cfg.TableDisabled, "no-table", cfg.TableDisabled, "Desactivar la tabla de resultados")

	flags.StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "Entregar el reporte a este webhook")
	flags.StringVar(&cfg.HistoryDB, "history-db", cfg.HistoryDB, "Ruta de la base SQLite de historial")
	noHistory := flags.Bool("no-history", !cfg.HistoryEnabled, "No guardar la consulta en el historial")
	flags.BoolVar(&cfg.ShowHistory, "history", false, "Listar el historial de consultas y salir")

	// Habilitación por fuente: -src.hibp=false fuerza la deshabilitación
	// aunque el clasificador la habilite para el tipo de consulta.
	srcFlags := make(map[string]*bool, len(cfg.Sources))
	for _, name := range knownSources {
		srcFlags[name] = flags.Bool("src."+name, cfg.Sources[name].Enabled,
			fmt.Sprintf("Habilitar la fuente %s", name))
	}

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg.HistoryEnabled = !*noHistory

	for _, name := range knownSources {
		if flags.Changed("src." + name) {
			sc := cfg.Sources[name]
			sc.Enabled = *srcFlags[name]
			cfg.Sources[name] = sc
			cfg.SourceOverrides[name] = *srcFlags[name]
		}
	}

	// La consulta también puede venir como argumento posicional.
	if cfg.Query == "" && flags.NArg() > 0 {
		cfg.Query = strings.Join(flags.Args(), " ")
	}

	return nil
}

func normalize(c *Config) {
	c.Query = strings.TrimSpace(c.Query)
	if c.TimeoutS < 1 {
		c.TimeoutS = 30
	}
	if c.MaxResults < 1 {
		c.MaxResults = 10
	}

	timeout := time.Duration(c.TimeoutS) * time.Second
	for name, sc := range c.Sources {
		if sc.Timeout <= 0 {
			sc.Timeout = timeout
		}
		if sc.MaxResults <= 0 {
			sc.MaxResults = c.MaxResults
		}
		c.Sources[name] = sc
	}
}

// Timeout retorna el timeout por fuente como duración.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutS) * time.Second
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}
