package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Docker configuration
	Docker DockerConfig

	// Workflow configuration
	Workflow WorkflowConfig

	// Logging configuration
	LogLevel string
}

type DockerConfig struct {
	Host       string
	APIVersion string
}

type WorkflowConfig struct {
	// ExamplesPath is the base directory holding the workflow's file assets.
	ExamplesPath string
	// Image is the reference of the demo image to look up, pull or build.
	Image string
}

// LoadConfig loads configuration using viper with support for:
// - Environment variables
// - .env files
// - Default values
// Fails fast on missing required configs
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Enable environment variable support
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The examples path historically travels in a lowercase variable
	viper.BindEnv("workflow.examples_path", "MLCUBE_EXAMPLES", "mlcube_examples")
	viper.BindEnv("docker.host", "DOCKER_HOST")

	setDefaults()

	// Try to read config file (optional - env vars take precedence)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{
		Docker: DockerConfig{
			Host:       viper.GetString("docker.host"),
			APIVersion: viper.GetString("docker.api_version"),
		},
		Workflow: WorkflowConfig{
			ExamplesPath: viper.GetString("workflow.examples_path"),
			Image:        viper.GetString("workflow.image"),
		},
		LogLevel: viper.GetString("log.level"),
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func setDefaults() {
	// Docker defaults
	viper.SetDefault("docker.host", "unix:///var/run/docker.sock")
	viper.SetDefault("docker.api_version", "")

	// Workflow defaults
	viper.SetDefault("workflow.examples_path", "")
	viper.SetDefault("workflow.image", "mlcommons/mnist:0.0.1")

	// Logging defaults
	viper.SetDefault("log.level", "info")
}

func validateConfig(config *Config) error {
	var missing []string

	// Required: workflow assets location
	if config.Workflow.ExamplesPath == "" {
		missing = append(missing, "MLCUBE_EXAMPLES")
	}

	if config.Workflow.Image == "" {
		missing = append(missing, "WORKFLOW_IMAGE")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// WorkflowPath returns the directory holding the named workflow's assets.
func (c *Config) WorkflowPath(name string) string {
	return filepath.Join(c.Workflow.ExamplesPath, name)
}

// ProxyBuildArgs returns the proxy variables to forward as build arguments
// and container environment. Only variables actually set are included.
func ProxyBuildArgs() map[string]string {
	args := make(map[string]string)
	for _, name := range []string{"http_proxy", "https_proxy"} {
		if value, ok := os.LookupEnv(name); ok {
			args[name] = value
		}
	}
	return args
}
