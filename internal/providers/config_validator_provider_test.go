package providers

import (
	"backlog/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		Api: structures.ApiConfig{
			Origin: "http://localhost:8080",
		},
		Storage: structures.StorageConfig{
			Driver:   "file",
			FilePath: "/tmp/backlog/session.dat",
			Size:     1,
		},
		WebServer: structures.Server{
			Host: "127.0.0.1",
			Port: 9464,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_UnknownStorageDriver(t *testing.T) {
	c := validConfig()
	c.Storage.Driver = "redis"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingOrigin(t *testing.T) {
	c := validConfig()
	c.Api.Origin = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
