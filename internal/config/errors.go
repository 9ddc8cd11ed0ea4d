package config

import "errors"

var (
	// ErrNotFound is returned by Load when no configuration file exists
	ErrNotFound = errors.New("config file does not exist")

	// ErrParse is returned when the configuration file cannot be read or decoded
	ErrParse = errors.New("failed to parse config file")

	// ErrInvalid is returned when a configuration value is out of range
	ErrInvalid = errors.New("invalid config")
)
