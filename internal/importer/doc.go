// Package importer loads CSV movie lists into the catalogue.
//
// Rows are title-first with an optional year column. Titles already in
// the catalogue are matched rather than duplicated, and every row joins
// the named pick list.
package importer
