// Package language provides language code normalization and display names.
//
// Detector backends report codes in different shapes (ISO 639-1, ISO 639-3,
// BCP 47 tags, legacy aliases such as "iw", or plain English words when the
// backend is an LLM). Routing keys, configuration tables and log output all go
// through this package so that "he", "heb", "iw", "he-IL" and "Hebrew" land
// in the same destination.
package language
