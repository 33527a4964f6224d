// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Most tools in this repository are configured entirely by flags; YAML config is
// used where flags are the wrong vehicle, such as database credentials.
package config
