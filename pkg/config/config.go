// Package config loads the server configuration, including the container
// hierarchy which is created when the server starts.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	yaml "gopkg.in/yaml.v3"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Config holds configuration for the document management server
type Config struct {
	Listen   string       `yaml:"listen"`
	Prefix   string       `yaml:"prefix"`     // path prefix for the API, e.g. "/api/dms"
	Origin   string       `yaml:"origin"`     // CORS origin, empty to disable
	Backend  string       `yaml:"backend"`    // storage URL: mem://, file:// or s3://
	Public   string       `yaml:"public_url"` // externally visible API URL, used for signed transfer URLs
	Secret   string       `yaml:"secret"`     // signs bearer tokens and transfer URLs
	Expiry   string       `yaml:"presign_expiry"`
	MaxSize  int64        `yaml:"max_upload_size"` // bytes, zero for unlimited
	Capacity int          `yaml:"activity_capacity"`
	S3       S3Config     `yaml:"s3"`
	Seed     []Department `yaml:"seed"`
}

// S3Config holds credentials and endpoint overrides for s3:// backends
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // for S3-compatible stores
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Anonymous bool   `yaml:"anonymous"`
}

type Department struct {
	Name       string     `yaml:"name"`
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Name          string        `yaml:"name"`
	Subcategories []Subcategory `yaml:"subcategories"`
	Folders       []Folder      `yaml:"folders"`
}

type Subcategory struct {
	Name    string   `yaml:"name"`
	Folders []Folder `yaml:"folders"`
}

// Folder may be written as a plain name, or as a mapping with nested folders
type Folder struct {
	Name    string   `yaml:"name"`
	Folders []Folder `yaml:"folders"`
}

// SeedNode is a node to create, with the display path of its parent
type SeedNode struct {
	Parent string
	Kind   schema.NodeKind
	Name   string
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultListen   = ":8080"
	DefaultPrefix   = "/api/dms"
	DefaultBackend  = "mem://documents"
	DefaultExpiry   = "15m"
	DefaultCapacity = 10000
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Load reads configuration from a YAML file. Environment variables in the
// file, such as ${DMS_SECRET}, are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse reads configuration from YAML and applies defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.defaults()
	return cfg, nil
}

// Default returns the configuration used when there is no file
func Default() *Config {
	cfg := new(Config)
	cfg.defaults()
	return cfg
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("secret is required")
	}
	if _, err := url.Parse(c.Backend); err != nil {
		return fmt.Errorf("invalid backend: %w", err)
	}
	if c.Public != "" {
		if u, err := url.Parse(c.Public); err != nil {
			return fmt.Errorf("invalid public_url: %w", err)
		} else if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("public_url must be an http or https URL")
		}
	}
	if _, err := c.PresignExpiry(); err != nil {
		return err
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("max_upload_size must not be negative")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("activity_capacity must be positive")
	}
	for _, node := range c.SeedNodes() {
		if node.Name == "" {
			return fmt.Errorf("seed: %s under %q has no name", node.Kind, node.Parent)
		}
	}
	return nil
}

// PresignExpiry returns the lifetime of presigned URLs
func (c *Config) PresignExpiry() (time.Duration, error) {
	d, err := time.ParseDuration(c.Expiry)
	if err != nil {
		return 0, fmt.Errorf("invalid presign_expiry: %w", err)
	} else if d <= 0 {
		return 0, fmt.Errorf("presign_expiry must be positive")
	}
	return d, nil
}

// TransferURL returns the URL of the signed transfer endpoint
func (c *Config) TransferURL() string {
	if c.Public == "" {
		return ""
	}
	u, err := url.Parse(c.Public)
	if err != nil {
		return ""
	}
	u.Path = path.Join(u.Path, "transfer")
	return u.String()
}

// SeedNodes returns the seed hierarchy in creation order, parents first
func (c *Config) SeedNodes() []SeedNode {
	var result []SeedNode
	for _, dept := range c.Seed {
		deptPath := "/" + dept.Name
		result = append(result, SeedNode{Kind: schema.NodeDepartment, Name: dept.Name})
		for _, cat := range dept.Categories {
			catPath := deptPath + "/" + cat.Name
			result = append(result, SeedNode{Parent: deptPath, Kind: schema.NodeCategory, Name: cat.Name})
			for _, sub := range cat.Subcategories {
				result = append(result, SeedNode{Parent: catPath, Kind: schema.NodeSubcategory, Name: sub.Name})
				result = appendFolders(result, catPath+"/"+sub.Name, sub.Folders)
			}
			result = appendFolders(result, catPath, cat.Folders)
		}
	}
	return result
}

// UnmarshalYAML accepts either a scalar name or a mapping
func (f *Folder) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		f.Name = value.Value
		return nil
	}
	type plain Folder
	return value.Decode((*plain)(f))
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Expiry == "" {
		c.Expiry = DefaultExpiry
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
}

func appendFolders(result []SeedNode, parent string, folders []Folder) []SeedNode {
	for _, folder := range folders {
		result = append(result, SeedNode{Parent: parent, Kind: schema.NodeFolder, Name: folder.Name})
		result = appendFolders(result, parent+"/"+folder.Name, folder.Folders)
	}
	return result
}
