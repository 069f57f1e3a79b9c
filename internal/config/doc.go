// Package config loads pdfchapters settings from TOML or YAML files and
// PDFCHAPTERS_* environment variables.
//
// A TOML file with every setting at its default:
//
//	[output]
//	root = "."
//
//	[logging]
//	level = "info"
//	time_format = "15:04:05"
//	text_output = true
//	file = ""
//
//	[extract]
//	reset_encoding_on_missing_font = false
//	min_font_height = 0.0
//
//	[classifier]
//	distinct_appendices = false
package config
