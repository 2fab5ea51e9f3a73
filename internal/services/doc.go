// Package services serves processed data to consumers.
//
// DatasetService is the single entry point for the merged per-year dataset:
// it reads the award, institution and graduation-rate artifacts, joins them
// and memoizes the result per year. SectorOptions derives the sector filter
// choices from a loaded dataset.
package services
