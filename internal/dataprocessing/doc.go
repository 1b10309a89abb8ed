// Package dataprocessing turns raw market-data files into normalized
// tables and derives the abnormal-volume screening metrics.
//
// Normalization handles the format quirks of XQ end-of-day exports:
// legacy Big5 text alongside UTF-8, ambiguous field delimiters, spreadsheet
// archives, locale-formatted numerics with thousands separators and
// parenthesized negatives, and YYYYMMDD numeral dates. Malformed cells
// degrade to null values; only a missing required column or a file no
// supported encoding can decode is an error.
//
// Derivation computes, per entity, a trailing mean of volume that excludes
// the current day and the ratio of the day's volume to that baseline.
package dataprocessing
