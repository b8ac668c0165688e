// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files and LABHUB_* environment variables. It
// covers the server transport, the catalog source, the user-copy store
// backend, the rendering frame policy and logging.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Catalog: %s\n", cfg.Catalog.Source)
package config
