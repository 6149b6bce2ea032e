// Package config holds the per-request model configuration and the
// application configuration used by cmd/agentloop.
//
// The application configuration is a JSON document unmarshalled over
// DefaultConfig, so keys present in the file override defaults (including
// explicit zero values) while missing keys keep them. Selected environment
// variables are applied afterwards and the merged result is validated.
package config
