// Package dataprocessing turns raw survey extracts into typed, canonical tables.
//
// # Stages
//
//  1. ParseFile reads a delimited text file or workbook into a RawTable.
//  2. MapAwards, MapInstitutions and MapGradRates resolve raw headers to
//     canonical columns (positional for awards, by name otherwise) and coerce cells.
//  3. Decoder translates institution category codes into labels.
//  4. ValidateIdentifiers and CheckReferences report on identifier quality.
//  5. Merge joins a year's awards with institutions and graduation rates.
//
// Everything after ParseFile is a pure transform over in-memory slices.
package dataprocessing
