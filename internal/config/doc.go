// Package config provides configuration loading and path resolution for ipedsprep.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//	1. Defaults (Default)
//	2. YAML file (--config, or ipedsprep.yaml in the working directory)
//	3. IPEDS_LOGGING_* and IPEDS_TELEMETRY_* environment variables
//
// Paths and pipeline settings come only from the file and flags:
//
//	IPEDS_LOGGING_LEVEL=debug
//	IPEDS_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/ipedsprep.prom
//
// # Path Management
//
// Paths is the single place artifact file names are derived:
//
//	paths := config.NewPaths(cfg.Paths, "")
//	paths.AwardArtifact("2223")   // processed/financial_aid_2223.parquet
//	config.SidecarPath(paths.GradRateArtifact()) // processed/grad_rate_2023.parquet.meta.json
package config
