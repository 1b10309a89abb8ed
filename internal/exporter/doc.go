// Package exporter writes screen results to CSV files. Output carries a
// UTF-8 BOM so spreadsheet software opens the Chinese headers correctly.
package exporter
