package config

import "time"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	DataHub  DataHubConfig  `yaml:"datahub" json:"datahub"`
	Features FeaturesConfig `yaml:"features" json:"features"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" json:"driver"`
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns" json:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns" json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" json:"connMaxLifetime"`
	AutoMigrate     bool          `yaml:"autoMigrate" json:"autoMigrate"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	Mode           string        `yaml:"mode" json:"mode"`
	ReadTimeout    time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	MaxHeaderBytes int           `yaml:"maxHeaderBytes" json:"maxHeaderBytes"`
	TLS            TLSConfig     `yaml:"tls" json:"tls"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	CertFile     string `yaml:"certFile" json:"certFile"`
	KeyFile      string `yaml:"keyFile" json:"keyFile"`
	MinVersion   string `yaml:"minVersion" json:"minVersion"`
	MaxVersion   string `yaml:"maxVersion" json:"maxVersion"`
	CipherSuites string `yaml:"cipherSuites" json:"cipherSuites"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	JWTSecretKey    string        `yaml:"jwtSecretKey" json:"jwtSecretKey"`
	Issuer          string        `yaml:"issuer" json:"issuer"`
	Audience        string        `yaml:"audience" json:"audience"`
	TokenExpiration time.Duration `yaml:"tokenExpiration" json:"tokenExpiration"`
	SigningMethod   string        `yaml:"signingMethod" json:"signingMethod"`
	DefaultUsers    []DefaultUser `yaml:"defaultUsers" json:"defaultUsers"`
}

// DefaultUser represents a default user to create during system initialization
type DefaultUser struct {
	Username string   `yaml:"username" json:"username"`
	Password string   `yaml:"password" json:"password"`
	Email    string   `yaml:"email" json:"email"`
	Roles    []string `yaml:"roles" json:"roles"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	FilePath   string `yaml:"filePath" json:"filePath"`
	MaxSize    int    `yaml:"maxSize" json:"maxSize"`
	MaxBackups int    `yaml:"maxBackups" json:"maxBackups"`
	MaxAge     int    `yaml:"maxAge" json:"maxAge"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DataHubConfig holds resource-tree and observation pipeline settings,
// independent of the runtime JSON configuration a client loads via the
// ConfigLoader operation.
type DataHubConfig struct {
	BackupDir          string              `yaml:"backupDir" json:"backupDir"`
	BackupInterval     time.Duration       `yaml:"backupInterval" json:"backupInterval"`
	MaxObservationName int                 `yaml:"maxObservationNameLen" json:"maxObservationNameLen"`
	DefaultBufferDepth int                 `yaml:"defaultBufferDepth" json:"defaultBufferDepth"`
	Destinations       []DestinationConfig `yaml:"destinations" json:"destinations"`
}

// DestinationConfig registers a named destination handler at startup.
type DestinationConfig struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`
	DSN  string `yaml:"dsn" json:"dsn"`
}

// FeaturesConfig holds feature flags
type FeaturesConfig struct {
	Metrics     bool `yaml:"metrics" json:"metrics"`
	RBACEnabled bool `yaml:"rbacEnabled" json:"rbacEnabled"`
}
