// Package validation holds the structural checks applied before an artifact
// is written: raw file and output directory checks, struct-tag validation of
// mapped records, and unit_id uniqueness.
package validation
