// Package operations runs the yearly processing pipeline.
//
// A YearlyProcessor takes one raw extract through load, schema mapping,
// categorical decoding (institutions only), structural validation and
// persistence. Persistence writes a temporary parquet file next to the
// target, re-reads it and compares it with the in-memory table before
// publishing:
//
//   - award artifacts (financial_aid_<tag>.parquet) are published with a
//     hard link that fails if the artifact exists, so a year is processed
//     at most once
//   - institutions.parquet and grad_rate_2023.parquet are replaced
//     atomically on every run
//
// RunBatch drives a whole raw directory: singletons first, then every award
// year in parallel, collecting one Outcome per unit of work.
package operations
