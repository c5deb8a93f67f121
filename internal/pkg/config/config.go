package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"gopkg.in/yaml.v2"
)

const (
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type StoreConfig struct {
	// Backend used to reach the documents: mongo, firestore or memory
	Driver string `yaml:"driver" validate:"required,oneof=mongo firestore memory"`
	// The address of the MongoDB server
	Uri string `yaml:"uri" validate:"required_if=Driver mongo"`
	// The MongoDB database holding the collections
	Database string `yaml:"database" validate:"required_if=Driver mongo"`
	// The Google Cloud project holding the Firestore database
	Project string `yaml:"project" validate:"required_if=Driver firestore"`
	// Optional service account file for Firestore
	Credentials string `yaml:"credentials"`
	// Run each MongoDB batch inside a transaction (replica sets only).
	// Without it a failed batch may be partly deleted yet counted as zero.
	Transactions bool `yaml:"transactions"`
	// Timeout applied to connection and ping
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	// Documents generated per collection by the memory driver
	Seed map[string]int `yaml:"seed" validate:"dive,gte=0"`
}

// Target names the database the purge runs against. Operators type it
// to confirm a purge.
func (s StoreConfig) Target() string {
	switch s.Driver {
	case DriverFirestore:
		return s.Project
	case DriverMemory:
		if s.Database == "" {
			return DriverMemory
		}
	}
	return s.Database
}

type PurgeConfig struct {
	// Number of deletions per committed batch, 500 at most
	BatchSize int `yaml:"batch" validate:"gte=0,lte=500"`
	// Upper bound of deleted documents per second, 0 disables the limit
	MaxDocsPerSecond int `yaml:"max_docs_per_second" validate:"gte=0"`
	// Optional subset of the purgeable collections
	Collections []string `yaml:"collections"`
}

type ApiConfig struct {
	Listen          string        `yaml:"listen"`
	JwtSecret       string        `yaml:"jwt_secret"`
	AdminRole       string        `yaml:"admin_role"`
	ConfirmationTtl time.Duration `yaml:"confirmation_ttl" validate:"gte=0"`
}

type StatsConfig struct {
	Interval time.Duration `yaml:"interval" validate:"gte=0"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type AppConfig struct {
	// Application logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Document store access
	Store StoreConfig `yaml:"store"`

	// Purge tuning
	Purge PurgeConfig `yaml:"purge"`

	Api     ApiConfig     `yaml:"api"`
	Stats   StatsConfig   `yaml:"stats"`
	Tracing TracingConfig `yaml:"tracing"`

	// Features flags
	Features        []string        `yaml:"features"`
	FeaturesEnabled map[string]bool `yaml:"-"`
}

// NewConfig returns a configuration holding only the defaults.
func NewConfig() *AppConfig {
	c := &AppConfig{}
	c.applyDefaults()
	return c
}

var Current *AppConfig = NewConfig()

// ResolvePath returns the configuration file path. The CONFIG_FILE_PATH
// environment variable wins over the command line value.
func ResolvePath(flagValue string) string {
	if p := os.Getenv("CONFIG_FILE_PATH"); p != "" {
		return p
	}
	return flagValue
}

// LoadConfig loads the configuration from a file, then applies the
// environment overrides and the defaults.
func (c *AppConfig) LoadConfig(path string) error {

	if path == "" {
		return errors.New("no configuration file given")
	}
	log.Info("configuration file path: ", path)

	// Open the configuration file
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening configuration file: %w", err)
	}
	defer f.Close()

	// Decode the configuration file
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("decoding configuration file: %w", err)
	}

	c.applyEnv(os.LookupEnv)
	c.applyDefaults()
	return c.Validate()
}

func (c *AppConfig) applyEnv(getenv func(string) (string, bool)) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"LOG_LEVEL", &c.Logging.Level},
		{"STORE_DRIVER", &c.Store.Driver},
		{"STORE_URI", &c.Store.Uri},
		{"STORE_DATABASE", &c.Store.Database},
		{"FIRESTORE_PROJECT_ID", &c.Store.Project},
		{"API_JWT_SECRET", &c.Api.JwtSecret},
	}
	for _, o := range overrides {
		if v, ok := getenv(o.env); ok && v != "" {
			*o.dst = v
		}
	}
}

func (c *AppConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = log.InfoLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = 10 * time.Second
	}
	if c.Purge.BatchSize == 0 {
		c.Purge.BatchSize = 500
	}
	if c.Api.Listen == "" {
		c.Api.Listen = ":3000"
	}
	if c.Api.AdminRole == "" {
		c.Api.AdminRole = "admin"
	}
	if c.Api.ConfirmationTtl == 0 {
		c.Api.ConfirmationTtl = 2 * time.Minute
	}
	if c.Stats.Interval == 0 {
		c.Stats.Interval = 30 * time.Second
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "site-purge"
	}

	// Features
	c.FeaturesEnabled = make(map[string]bool)
	for _, feature := range c.Features {
		c.FeaturesEnabled[feature] = true
	}
}

// Validate checks the struct constraints and the cross-field rules.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsFeatureEnabled(ApiPurge) && c.Api.JwtSecret == "" {
		return errors.New("invalid configuration: api.jwt_secret is required when the api-purge feature is enabled")
	}
	return nil
}

func (c *AppConfig) LogConfig() {
	log.Info("store configuration:")
	log.Info("- driver: ", c.Store.Driver)
	switch c.Store.Driver {
	case DriverMongo:
		log.Info("- uri: ", ObfuscateCredentials(c.Store.Uri))
		log.Info("- database: ", c.Store.Database)
	case DriverFirestore:
		log.Info("- project: ", c.Store.Project)
	}
	log.Info("- batch size: ", c.Purge.BatchSize)
	if len(c.Purge.Collections) > 0 {
		log.Info("collections to purge:")
		for _, coll := range c.Purge.Collections {
			log.Info("- ", coll)
		}
	}
	log.Info("features: ", c.Features)
}

var credentialsPattern = regexp.MustCompile(`(mongodb(\+srv)?:\/\/)[^@\/]*@`)

// Considering the following structure for MongoDB connection string:
// "mongodb://<username>:<password>@<host>:<port>"
// The following function will replaces the username and password with "****"
func ObfuscateCredentials(mongoConnectionString string) string {
	return credentialsPattern.ReplaceAllString(mongoConnectionString, "${1}****:****@")
}
