// Package config loads, normalizes, and validates lingosort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LINGOSORT_LLM_API_KEY and TIKA_URL. The Config type centralizes every knob
// the batch driver and CLI need: input roots, the output tree, the language
// routing table, and the extraction and classification collaborators.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, normalized language codes, and clear validation errors.
package config
