// Package config loads and validates Lien Portal Core configuration.
//
// Configuration comes from three layers, each overriding the last:
// hardcoded defaults, a YAML file, and LIENPORTAL_* environment
// variables. Secrets (JWT signing key, upstream credentials, Redis
// password, InfluxDB token) should always come from the environment,
// never the file.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Validation runs on every Load; the service refuses to start with a
// missing upstream base URL or a weak JWT secret.
package config
