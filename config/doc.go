// Package config loads flowkit configuration from YAML files and the
// environment using viper.
//
// Load searches standard locations for <name>.yml and a .env file,
// binds environment variables, and unmarshals into the target struct:
//
//	var cfg pipeline.Config
//	err := config.Load("flowkit", &cfg)
package config
