package config

// Application constants
const (
	AppName = "ipedsprep"

	// EnvPrefix namespaces environment overrides, e.g. IPEDS_LOGGING_LEVEL.
	EnvPrefix = "IPEDS"

	DefaultConfigFile = "ipedsprep.yaml"

	DefaultRawDir       = "raw"
	DefaultProcessedDir = "processed"
	DefaultLogsDir      = "logs"
	DefaultLogFile      = "logs/ipedsprep.log"

	DefaultWorkers        = 4
	DefaultFloatTolerance = 1e-9

	// Raw singleton sources
	InstitutionsRawFile = "institutions.csv"
	GradRateRawFile     = "gradrate_2022_23.csv"

	// Artifact names
	AwardArtifactPattern = "financial_aid_%s.parquet"
	InstitutionsArtifact = "institutions.parquet"
	GradRateArtifact     = "grad_rate_2023.parquet"
	SidecarSuffix        = ".meta.json"
)
