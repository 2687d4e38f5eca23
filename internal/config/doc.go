// Package config provides layered configuration for the curation pipeline.
//
// Configuration is loaded from three sources, later sources winning:
//
//  1. Struct tag defaults
//  2. An optional YAML file (curate.yaml by default)
//  3. Environment variables with the CURATE prefix
//
// The recognized pipeline options mirror the curation workflow's knobs:
// validation strictness, outlier policy and detection rule, and the
// normalization method fitted per numeric sensor field. All relative paths
// are resolved against the base directory during Load, so downstream
// packages only ever see absolute paths.
package config
