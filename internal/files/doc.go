// Package files locates raw extracts and tidies the processed directory.
//
// Discovery maps every known academic year to its raw award extract
// (finaid_2022_23.csv and friends, any supported extension) and reports
// which years already have a published artifact. Manager removes temporary
// artifacts left behind by interrupted runs.
package files
