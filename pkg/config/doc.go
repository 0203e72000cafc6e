// Package config loads typed configuration structs from environment
// variables (with optional .env bootstrap), caching each config type for the
// application lifetime.
package config
