// Package config loads typed configuration from environment variables.
//
// It wraps github.com/caarlos0/env/v11 for struct-tag parsing and
// github.com/joho/godotenv for an optional .env file. Load caches each config
// type for the life of the process; Parse does not and is what tests use.
package config
