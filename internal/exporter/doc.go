// Package exporter persists pipeline output.
//
// The parquet store (WriteTemp, ReadTable, PublishNew, PublishReplace)
// hold the columnar artifacts. Every artifact is written to a temporary file
// first and only published once it has been verified, so a half-written file
// never sits at an artifact path. Sidecar records provenance next to each
// artifact, including a BLAKE2b-256 checksum.
//
// CSVWriter and MergedExporter produce CSV for downstream tools, and
// FormatValue renders nullable numbers for display:
//
//	exporter.FormatValue(&v, exporter.KindCurrency) // "$1,234"
package exporter
