package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Provider names a blob storage backend.
const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config holds blob storage connection parameters for either provider.
// Azure authenticates with ConnectionString when set, otherwise with the
// default Azure credential chain against AccountURL. S3 uses the default
// AWS credential chain unless static keys are supplied.
type Config struct {
	Provider         string `toml:"provider"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Bucket           string `toml:"bucket"`
	Region           string `toml:"region"`
	Endpoint         string `toml:"endpoint"`
	UsePathStyle     bool   `toml:"use_path_style"`
	AccessKeyID      string `toml:"access_key_id"`
	SecretAccessKey  string `toml:"secret_access_key"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Bucket           string
	Region           string
	Endpoint         string
	UsePathStyle     string
	AccessKeyID      string
	SecretAccessKey  string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.UsePathStyle {
		c.UsePathStyle = true
	}
	if overlay.AccessKeyID != "" {
		c.AccessKeyID = overlay.AccessKeyID
	}
	if overlay.SecretAccessKey != "" {
		c.SecretAccessKey = overlay.SecretAccessKey
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "documents"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	str(env.Provider, &c.Provider)
	str(env.ContainerName, &c.ContainerName)
	str(env.ConnectionString, &c.ConnectionString)
	str(env.AccountURL, &c.AccountURL)
	str(env.Bucket, &c.Bucket)
	str(env.Region, &c.Region)
	str(env.Endpoint, &c.Endpoint)
	str(env.AccessKeyID, &c.AccessKeyID)
	str(env.SecretAccessKey, &c.SecretAccessKey)

	if env.UsePathStyle != "" {
		if v := os.Getenv(env.UsePathStyle); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.UsePathStyle = b
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required")
		}
	case ProviderS3:
		if c.Bucket == "" {
			return fmt.Errorf("bucket required")
		}
		if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
			return fmt.Errorf("access_key_id and secret_access_key must be set together")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
