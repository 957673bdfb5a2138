package providers

import (
	"backlog/internal/structures"
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"os"
	"path/filepath"
	"strings"
)

const AppName = "Backlog"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")
	}

	v.BindEnv("api.baseUrl", "BACKLOG_API_URL")
	v.BindEnv("api.origin", "BACKLOG_ORIGIN")
	v.BindEnv("logger.level", "BACKLOG_LOG_LEVEL")
	v.BindEnv("storage.driver", "BACKLOG_STORAGE_DRIVER")
	v.BindEnv("storage.filePath", "BACKLOG_STORAGE_PATH")
	v.BindEnv("metrics.enabled", "BACKLOG_METRICS_ENABLED")

	if flags.ConfigPath != "" {
		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err := v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	dataDir := filepath.Join(home, ".backlog")

	v.SetDefault("api.baseUrl", "")
	v.SetDefault("api.origin", "http://localhost:8080")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.filePath", filepath.Join(dataDir, "session.dat"))
	v.SetDefault("storage.size", 1)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0600)
	v.SetDefault("logger.dir", dataDir)
	v.SetDefault("webServer.enabled", false)
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 9464)
	v.SetDefault("metrics.enabled", false)
}
