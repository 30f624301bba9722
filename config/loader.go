package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// loadInto reads YAML config and .env files into cfg. Precedence is
// environment variables over .env file over YAML file.
func loadInto(serviceName string, cfg interface{}) error {
	v := viper.New()

	if configFile := findConfigFile(serviceName); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	if envFile := findEnvFile(); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load %s: %v\n", envFile, err)
		} else {
			// Re-bind so variables from the .env file are picked up.
			bindEnvVars(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for service %s: %w", serviceName, err)
	}
	return nil
}

// findConfigFile searches standard locations for config.yml.
func findConfigFile(serviceName string) string {
	searchPaths := []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../../cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}
	for _, path := range searchPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// findEnvFile searches standard locations for a .env file.
func findEnvFile() string {
	for _, path := range []string{"./.env", "../.env", "../../.env"} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envSections are the config sections that may be overridden through
// environment variables (SERVER_PORT, AUTH_JWT_SECRET, ...). Only variables
// whose first segment matches a section are bound, so ambient variables like
// NAME or LANG cannot silently override config fields. Top-level scalars take
// a SCRIBELY_ prefix (SCRIBELY_NAME, SCRIBELY_ENVIRONMENT).
var envSections = map[string]bool{
	"logging":       true,
	"server":        true,
	"auth":          true,
	"database":      true,
	"storage":       true,
	"transcription": true,
	"observability": true,
}

const envPrefix = "scribely_"

// bindEnvVars makes recognized UPPER_SNAKE environment variables visible to
// viper under the nested key spellings mapstructure expects.
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.ToLower(pair[0])

		if trimmed, ok := strings.CutPrefix(key, envPrefix); ok {
			key = trimmed
		} else if section, _, found := strings.Cut(key, "_"); !found || !envSections[section] {
			continue
		}

		for _, variant := range envKeyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
}

// envKeyVariants generates nested key spellings for an environment variable.
// AUTH_JWT_SECRET yields auth_jwt_secret, auth.jwt.secret, auth.jwt_secret,
// and auth.jwt.secret-style progressive splits, so nested config keys with
// underscores in the leaf name still bind.
func envKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}

	seen := make(map[string]bool, len(variants))
	result := make([]string, 0, len(variants))
	for _, variant := range variants {
		if !seen[variant] {
			seen[variant] = true
			result = append(result, variant)
		}
	}
	return result
}
