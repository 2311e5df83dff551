package config

import (
	"os"
	"testing"
	"time"
)

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		server  ServerConfig
		wantErr bool
	}{
		{
			name: "Valid config",
			server: ServerConfig{
				Host:           "localhost",
				Port:           8080,
				ReadTimeout:    30 * time.Second,
				WriteTimeout:   30 * time.Second,
				MaxHeaderBytes: 1 << 20,
				TLS: TLSConfig{
					Enabled: false,
				},
			},
			wantErr: false,
		},
		{
			name: "Invalid port (too low)",
			server: ServerConfig{
				Host:           "localhost",
				Port:           0,
				ReadTimeout:    30 * time.Second,
				WriteTimeout:   30 * time.Second,
				MaxHeaderBytes: 1 << 20,
			},
			wantErr: true,
		},
		{
			name: "Invalid port (too high)",
			server: ServerConfig{
				Host:           "localhost",
				Port:           70000,
				ReadTimeout:    30 * time.Second,
				WriteTimeout:   30 * time.Second,
				MaxHeaderBytes: 1 << 20,
			},
			wantErr: true,
		},
		{
			name: "Invalid read timeout",
			server: ServerConfig{
				Host:           "localhost",
				Port:           8080,
				ReadTimeout:    0,
				WriteTimeout:   30 * time.Second,
				MaxHeaderBytes: 1 << 20,
			},
			wantErr: true,
		},
		{
			name: "Invalid write timeout",
			server: ServerConfig{
				Host:           "localhost",
				Port:           8080,
				ReadTimeout:    30 * time.Second,
				WriteTimeout:   0,
				MaxHeaderBytes: 1 << 20,
			},
			wantErr: true,
		},
		{
			name: "TLS enabled but missing cert file",
			server: ServerConfig{
				Host:           "localhost",
				Port:           8443,
				ReadTimeout:    30 * time.Second,
				WriteTimeout:   30 * time.Second,
				MaxHeaderBytes: 1 << 20,
				TLS: TLSConfig{
					Enabled:  true,
					KeyFile:  "testdata/key.pem",
					CertFile: "",
				},
			},
			wantErr: true,
		},
		{
			name: "TLS enabled but missing key file",
			server: ServerConfig{
				Host:           "localhost",
				Port:           8443,
				ReadTimeout:    30 * time.Second,
				WriteTimeout:   30 * time.Second,
				MaxHeaderBytes: 1 << 20,
				TLS: TLSConfig{
					Enabled:  true,
					KeyFile:  "",
					CertFile: "testdata/cert.pem",
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServer(tt.server)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDataHub(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "datahub-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	tests := []struct {
		name    string
		dh      DataHubConfig
		wantErr bool
	}{
		{
			name: "Valid config",
			dh: DataHubConfig{
				BackupDir:          tempDir,
				BackupInterval:     time.Minute,
				MaxObservationName: 64,
				DefaultBufferDepth: 16,
			},
			wantErr: false,
		},
		{
			name: "Empty backup directory",
			dh: DataHubConfig{
				BackupDir:          "",
				BackupInterval:     time.Minute,
				MaxObservationName: 64,
				DefaultBufferDepth: 16,
			},
			wantErr: true,
		},
		{
			name: "Non-existent backup directory",
			dh: DataHubConfig{
				BackupDir:          "/path/that/does/not/exist",
				BackupInterval:     time.Minute,
				MaxObservationName: 64,
				DefaultBufferDepth: 16,
			},
			wantErr: true,
		},
		{
			name: "Invalid backup interval",
			dh: DataHubConfig{
				BackupDir:          tempDir,
				BackupInterval:     0,
				MaxObservationName: 64,
				DefaultBufferDepth: 16,
			},
			wantErr: true,
		},
		{
			name: "Invalid max observation name length",
			dh: DataHubConfig{
				BackupDir:          tempDir,
				BackupInterval:     time.Minute,
				MaxObservationName: 0,
				DefaultBufferDepth: 16,
			},
			wantErr: true,
		},
		{
			name: "Invalid default buffer depth",
			dh: DataHubConfig{
				BackupDir:          tempDir,
				BackupInterval:     time.Minute,
				MaxObservationName: 64,
				DefaultBufferDepth: 0,
			},
			wantErr: true,
		},
		{
			name: "Duplicate destination name",
			dh: DataHubConfig{
				BackupDir:          tempDir,
				BackupInterval:     time.Minute,
				MaxObservationName: 64,
				DefaultBufferDepth: 16,
				Destinations: []DestinationConfig{
					{Name: "primary", Kind: "log"},
					{Name: "primary", Kind: "log"},
				},
			},
			wantErr: true,
		},
		{
			name: "Destination missing kind",
			dh: DataHubConfig{
				BackupDir:          tempDir,
				BackupInterval:     time.Minute,
				MaxObservationName: 64,
				DefaultBufferDepth: 16,
				Destinations: []DestinationConfig{
					{Name: "primary", Kind: ""},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataHub(tt.dh)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDataHub() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAuth(t *testing.T) {
	tests := []struct {
		name    string
		auth    AuthConfig
		wantErr bool
	}{
		{
			name: "Valid config",
			auth: AuthConfig{
				Enabled:         true,
				JWTSecretKey:    "my-secret-key",
				Issuer:          "libgo-server",
				Audience:        "libgo-clients",
				TokenExpiration: 15 * time.Minute,
				SigningMethod:   "HS256",
			},
			wantErr: false,
		},
		{
			name: "Auth disabled",
			auth: AuthConfig{
				Enabled: false,
			},
			wantErr: false,
		},
		{
			name: "Empty JWT secret",
			auth: AuthConfig{
				Enabled:         true,
				JWTSecretKey:    "",
				Issuer:          "libgo-server",
				Audience:        "libgo-clients",
				TokenExpiration: 15 * time.Minute,
				SigningMethod:   "HS256",
			},
			wantErr: true,
		},
		{
			name: "Invalid token expiration",
			auth: AuthConfig{
				Enabled:         true,
				JWTSecretKey:    "my-secret-key",
				Issuer:          "libgo-server",
				Audience:        "libgo-clients",
				TokenExpiration: 0,
				SigningMethod:   "HS256",
			},
			wantErr: true,
		},
		{
			name: "Invalid signing method",
			auth: AuthConfig{
				Enabled:         true,
				JWTSecretKey:    "my-secret-key",
				Issuer:          "libgo-server",
				Audience:        "libgo-clients",
				TokenExpiration: 15 * time.Minute,
				SigningMethod:   "INVALID",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuth(tt.auth)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLogging(t *testing.T) {
	tests := []struct {
		name    string
		logging LoggingConfig
		wantErr bool
	}{
		{
			name: "Valid config",
			logging: LoggingConfig{
				Level:      "info",
				Format:     "json",
				FilePath:   "",
				MaxSize:    10,
				MaxBackups: 5,
				MaxAge:     30,
				Compress:   true,
			},
			wantErr: false,
		},
		{
			name: "Invalid level",
			logging: LoggingConfig{
				Level:  "invalid",
				Format: "json",
			},
			wantErr: true,
		},
		{
			name: "Invalid format",
			logging: LoggingConfig{
				Level:  "info",
				Format: "invalid",
			},
			wantErr: true,
		},
		{
			name: "Negative max size",
			logging: LoggingConfig{
				Level:   "info",
				Format:  "json",
				MaxSize: -1,
			},
			wantErr: true,
		},
		{
			name: "Negative max backups",
			logging: LoggingConfig{
				Level:      "info",
				Format:     "json",
				MaxSize:    10,
				MaxBackups: -1,
			},
			wantErr: true,
		},
		{
			name: "Negative max age",
			logging: LoggingConfig{
				Level:      "info",
				Format:     "json",
				MaxSize:    10,
				MaxBackups: 5,
				MaxAge:     -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogging(tt.logging)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLogging() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	// Create a temporary directory for testing
	tempDir, err := os.MkdirTemp("", "libgo-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Valid config
	validConfig := Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20,
			TLS: TLSConfig{
				Enabled: false,
			},
		},
		Auth: AuthConfig{
			Enabled:         true,
			JWTSecretKey:    "my-secret-key",
			Issuer:          "libgo-server",
			Audience:        "libgo-clients",
			TokenExpiration: 15 * time.Minute,
			SigningMethod:   "HS256",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			FilePath:   "",
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
		DataHub: DataHubConfig{
			BackupDir:          tempDir,
			BackupInterval:     time.Minute,
			MaxObservationName: 64,
			DefaultBufferDepth: 16,
		},
		Features: FeaturesConfig{
			Metrics:     true,
			RBACEnabled: true,
		},
	}

	// Test with valid config
	if err := Validate(&validConfig); err != nil {
		t.Errorf("Validate() error = %v, wantErr %v", err, false)
	}

	// Test with invalid server config
	invalidServerConfig := validConfig
	invalidServerConfig.Server.Port = 0
	if err := Validate(&invalidServerConfig); err == nil {
		t.Errorf("Validate() with invalid server config - error = %v, wantErr %v", err, true)
	}

	// Test with invalid datahub config
	invalidDataHubConfig := validConfig
	invalidDataHubConfig.DataHub.BackupDir = ""
	if err := Validate(&invalidDataHubConfig); err == nil {
		t.Errorf("Validate() with invalid datahub config - error = %v, wantErr %v", err, true)
	}

	// Test with invalid auth config
	invalidAuthConfig := validConfig
	invalidAuthConfig.Auth.SigningMethod = "INVALID"
	if err := Validate(&invalidAuthConfig); err == nil {
		t.Errorf("Validate() with invalid auth config - error = %v, wantErr %v", err, true)
	}

	// Test with invalid logging config
	invalidLoggingConfig := validConfig
	invalidLoggingConfig.Logging.Level = "INVALID"
	if err := Validate(&invalidLoggingConfig); err == nil {
		t.Errorf("Validate() with invalid logging config - error = %v, wantErr %v", err, true)
	}
}
