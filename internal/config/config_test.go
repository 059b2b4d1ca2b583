package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    *Config
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			want: &Config{
				Server: ServerConfig{
					Host:         "127.0.0.1",
					Port:         "8080",
					ReadTimeout:  30 * time.Second,
					WriteTimeout: 30 * time.Second,
					IdleTimeout:  120 * time.Second,
				},
				Preview: PreviewConfig{
					MaxWidth:       4096,
					MaxHeight:      4096,
					MaxFileSize:    32 << 20,
					MaxBorderWidth: 256,
				},
				Security: SecurityConfig{
					AllowedOrigins:     []string{},
					MaxConnections:     100,
					EnableRateLimit:    true,
					RateLimitPerMinute: 60,
				},
				Logging: LoggingConfig{Level: "info"},
			},
		},
		{
			name: "custom environment variables",
			envVars: map[string]string{
				"SERVER_HOST":        "0.0.0.0",
				"SERVER_PORT":        "9090",
				"LOG_LEVEL":          "debug",
				"MAX_CONNECTIONS":    "50",
				"PREVIEW_MAX_WIDTH":  "1920",
				"PREVIEW_MAX_HEIGHT": "1080",
				"ALLOWED_ORIGINS":    "http://a.example, http://b.example",
			},
			want: &Config{
				Server: ServerConfig{
					Host:         "0.0.0.0",
					Port:         "9090",
					ReadTimeout:  30 * time.Second,
					WriteTimeout: 30 * time.Second,
					IdleTimeout:  120 * time.Second,
				},
				Preview: PreviewConfig{
					MaxWidth:       1920,
					MaxHeight:      1080,
					MaxFileSize:    32 << 20,
					MaxBorderWidth: 256,
				},
				Security: SecurityConfig{
					AllowedOrigins:     []string{"http://a.example", "http://b.example"},
					MaxConnections:     50,
					EnableRateLimit:    true,
					RateLimitPerMinute: 60,
				},
				Logging: LoggingConfig{Level: "debug"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k := range tt.envVars {
				os.Unsetenv(k)
			}
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)

			assert.Equal(t, tt.want, cfg)

			for k := range tt.envVars {
				os.Unsetenv(k)
			}
		})
	}
}

func TestLoadWithOverrides(t *testing.T) {
	os.Setenv("SERVER_PORT", "7000")
	defer os.Unsetenv("SERVER_PORT")

	cfg, err := LoadWithOverrides(LoadOptions{
		Host:     "192.168.1.100",
		Port:     "4430",
		LogLevel: "warn",
	})

	require.NoError(t, err)
	assert.Equal(t, "192.168.1.100", cfg.Server.Host)
	assert.Equal(t, "4430", cfg.Server.Port) // override beats env
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "127.0.0.1", Port: "8080"},
			Preview: PreviewConfig{
				MaxWidth: 4096, MaxHeight: 4096, MaxFileSize: 32 << 20, MaxBorderWidth: 256,
			},
			Security: SecurityConfig{MaxConnections: 100, RateLimitPerMinute: 60, EnableRateLimit: true},
			Logging:  LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid configuration", func(*Config) {}, ""},
		{"missing server port", func(c *Config) { c.Server.Port = "" }, "server port cannot be empty"},
		{"invalid port range", func(c *Config) { c.Server.Port = "99999" }, "invalid server port"},
		{"non-numeric port", func(c *Config) { c.Server.Port = "eighty" }, "invalid server port"},
		{"invalid preview dimensions", func(c *Config) { c.Preview.MaxWidth = 0 }, "preview dimensions must be positive"},
		{"invalid max file size", func(c *Config) { c.Preview.MaxFileSize = -1 }, "max file size must be positive"},
		{"invalid border width limit", func(c *Config) { c.Preview.MaxBorderWidth = 0 }, "max border width must be positive"},
		{"TLS enabled without certs", func(c *Config) { c.Security.EnableTLS = true }, "TLS certificate and key files must be specified"},
		{"invalid max connections", func(c *Config) { c.Security.MaxConnections = 0 }, "max connections must be positive"},
		{"invalid rate limit", func(c *Config) { c.Security.RateLimitPerMinute = 0 }, "rate limit per minute must be positive"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	const key = "BMPER_TEST_VAR"

	os.Unsetenv(key)
	assert.Equal(t, "fallback", getEnvWithDefault(key, "fallback"))
	assert.Equal(t, 42, getIntWithDefault(key, 42))
	assert.Equal(t, int64(1<<40), getInt64WithDefault(key, 1<<40))
	assert.Equal(t, true, getBoolWithDefault(key, true))
	assert.Equal(t, time.Minute, getDurationWithDefault(key, time.Minute))

	os.Setenv(key, "7")
	assert.Equal(t, "7", getEnvWithDefault(key, "fallback"))
	assert.Equal(t, 7, getIntWithDefault(key, 42))
	assert.Equal(t, int64(7), getInt64WithDefault(key, 1<<40))

	os.Setenv(key, "not a number")
	assert.Equal(t, 42, getIntWithDefault(key, 42))
	assert.Equal(t, int64(1<<40), getInt64WithDefault(key, 1<<40))
	assert.Equal(t, true, getBoolWithDefault(key, true))
	assert.Equal(t, time.Minute, getDurationWithDefault(key, time.Minute))

	os.Setenv(key, "false")
	assert.Equal(t, false, getBoolWithDefault(key, true))

	os.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getDurationWithDefault(key, time.Minute))

	os.Setenv(key, "env")
	assert.Equal(t, "override", getOverrideOrEnv("override", key, "fallback"))
	assert.Equal(t, "env", getOverrideOrEnv("", key, "fallback"))

	os.Unsetenv(key)
	assert.Equal(t, "fallback", getOverrideOrEnv("", key, "fallback"))
}

func TestSplitString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"normal comma separation", "a,b,c", []string{"a", "b", "c"}},
		{"with whitespace", "a, b , c", []string{"a", "b", "c"}},
		{"empty input", "", []string{}},
		{"empty elements", "a,,c", []string{"a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitString(tt.input, ","))
		})
	}
}
