package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	FileName  = "cadence"
	EnvPrefix = "CADENCE"
)

type Config struct {
	DataPath     string
	DBPath       string
	StatePath    string
	JournalPath  string
	PluginsPath  string
	Log          LogConfig
	Plan         PlanConfig
	Notify       NotifyConfig
	HTTPAddr     string
	DefaultCycle []int
}

type LogConfig struct {
	Level  string
	Format string
}

type PlanConfig struct {
	Tier              string
	FreeSubjectLimit  int
	FreeTemplateLimit int
}

type NotifyConfig struct {
	Enabled  bool
	Schedule string
}

// Unlimited reports whether the configured tier lifts the free-tier caps.
func (p PlanConfig) Unlimited() bool {
	return strings.EqualFold(p.Tier, "pro")
}

func New(dataPath string) (Config, error) {
	if strings.TrimSpace(dataPath) == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dataPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v, dataPath)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("plan.tier", "free")
	v.SetDefault("plan.free_subject_limit", 5)
	v.SetDefault("plan.free_template_limit", 3)
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.schedule", "0 8 * * *")
	v.SetDefault("http.addr", "127.0.0.1:8787")
	v.SetDefault("review.default_offsets", []int{1, 7, 15})
}

func fromViper(v *viper.Viper, dataPath string) (Config, error) {
	internal := filepath.Join(dataPath, ".cadence")
	cfg := Config{
		DataPath:    dataPath,
		DBPath:      filepath.Join(internal, "cadence.db"),
		StatePath:   filepath.Join(internal, "state"),
		JournalPath: filepath.Join(dataPath, "journal"),
		PluginsPath: filepath.Join(dataPath, "plugins", "plugins.json"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Plan: PlanConfig{
			Tier:              strings.ToLower(v.GetString("plan.tier")),
			FreeSubjectLimit:  v.GetInt("plan.free_subject_limit"),
			FreeTemplateLimit: v.GetInt("plan.free_template_limit"),
		},
		Notify: NotifyConfig{
			Enabled:  v.GetBool("notify.enabled"),
			Schedule: v.GetString("notify.schedule"),
		},
		HTTPAddr:     v.GetString("http.addr"),
		DefaultCycle: v.GetIntSlice("review.default_offsets"),
	}
	switch cfg.Plan.Tier {
	case "free", "pro":
	default:
		return Config{}, fmt.Errorf("unsupported plan tier %q", cfg.Plan.Tier)
	}
	return cfg, nil
}
