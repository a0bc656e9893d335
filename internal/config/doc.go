// Package config loads the corpusidx configuration from defaults, an
// optional YAML file, and CORPUSIDX_* environment variables.
//
// Precedence is defaults < file < environment. In environment names a
// double underscore descends one nesting level, so
// CORPUSIDX_EMBEDDING__MODEL overrides embedding.model. The resulting
// Config struct is passed explicitly into each component; nothing in the
// program reads configuration globally.
package config
