// Package config provides centralized configuration management.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//  1. Default() values
//  2. A YAML file (explicit path, or pvcli.yaml / config.yaml / configs/config.yaml)
//  3. Environment variables prefixed PVA_, for example:
//
//	PVA_SERVER_PORT=9090
//	PVA_LOGGING_LEVEL=debug
//	PVA_ANALYSIS_WINDOW=5
//	PVA_UPLOAD_MAX_BYTES=10485760
//
// An environment variable only applies when it is set, so values from the
// file survive unless explicitly overridden.
//
// # Path Management
//
// ResolvePaths turns the configured data, reports and logs directories into
// absolute paths relative to a base directory (the executable's directory by
// default):
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	if err != nil {
//	    return err
//	}
//	out := paths.GetReportPath("result.xlsx")
//
// # Testing
//
// Use Default() for a configuration that needs no files or environment.
package config
