// Package config provides environment-based configuration.
//
// Loads values with getEnv defaults, validates required fields, and
// derives the instance identity from the hostname when unset.
package config
