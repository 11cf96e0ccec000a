// Package config holds the settings shared by every s3tool command.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the struct for the configuration
type Config struct {
	Profile   string `yaml:"profile"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accesskey"`
	SecretKey string `yaml:"secretkey"`
	PathStyle bool   `yaml:"pathstyle"`
	LogLevel  string `yaml:"loglevel"`
	PageSize  int32  `yaml:"pagesize"`
}

// ReadYamlCnxFile reads a yaml file and returns a Config struct
func ReadYamlCnxFile(filename string) (Config, error) {
	var cfg Config

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("error reading YAML file: %w", err)
	}

	err = yaml.Unmarshal(yamlFile, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("error parsing YAML file %s: %w", filename, err)
	}
	return cfg, nil
}

// Merge returns c with every non-zero field of override applied on top.
func (c Config) Merge(override Config) Config {
	if override.Profile != "" {
		c.Profile = override.Profile
	}
	if override.Region != "" {
		c.Region = override.Region
	}
	if override.Endpoint != "" {
		c.Endpoint = override.Endpoint
	}
	if override.AccessKey != "" {
		c.AccessKey = override.AccessKey
	}
	if override.SecretKey != "" {
		c.SecretKey = override.SecretKey
	}
	if override.PathStyle {
		c.PathStyle = true
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	if override.PageSize > 0 {
		c.PageSize = override.PageSize
	}
	return c
}

// Validate checks the values that cannot be caught by the YAML decoder.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("invalid page size %d", c.PageSize)
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("accesskey and secretkey must be set together")
	}
	return nil
}
