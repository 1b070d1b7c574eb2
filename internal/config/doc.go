// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file next to the process is loaded first, so secrets such as the
// news API key or the Supabase password can live outside the YAML.
package config
