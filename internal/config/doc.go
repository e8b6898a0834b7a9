// Package config provides application configuration loaded from an optional
// YAML file merged with EVE_-prefixed environment variables, environment
// taking precedence.
package config
