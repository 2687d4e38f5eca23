package config

// Environment and file conventions for configuration loading.
const (
	// EnvPrefix is the prefix for all environment variable overrides,
	// e.g. CURATE_PIPELINE_NORMALIZATION.
	EnvPrefix = "CURATE"

	// DefaultConfigFile is looked up relative to the working directory
	// when no -config flag is given.
	DefaultConfigFile = "curate.yaml"
)

// Recognized pipeline option values.
const (
	OutlierPolicyRetain = "retain"
	OutlierPolicyRemove = "remove"

	OutlierMethodIQR    = "iqr"
	OutlierMethodZScore = "zscore"

	NormalizationNone   = "none"
	NormalizationMinMax = "minmax"
	NormalizationZScore = "zscore"
)
