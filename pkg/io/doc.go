// Package io reads and writes transaction value artifacts.
//
// # Overview
//
// A value artifact is the list of per-transaction BTC amounts of one block,
// in block order. Fetching a block writes it once; rendering reads it back
// any number of times without touching the network.
//
// # Text Format
//
// The text format is one decimal number per line, joined with "\n" and
// without a trailing newline:
//
//	0.00512
//	12.5
//	6.25e-7
//
// Numbers use the shortest form that round-trips, with exponent notation
// below 1e-6 and from 1e21 up, so files written by other tools that print
// JavaScript numbers read back identically. [ValuesFilename] gives the
// conventional file name, "{height}_tx_values.txt".
//
// # Lenient and Strict Reading
//
// [ReadValues] splits the input on "\n" and converts every piece:
//
//   - surrounding whitespace (including "\r") is ignored
//   - an empty piece reads as 0, so an empty file yields one zero value
//   - a piece that is not a number reads as NaN
//
// NaN values are not rejected; they classify into the top bucket. Use
// [ReadValuesStrict] to fail on the first malformed line instead. Strict
// reading skips blank lines.
//
// # Spreadsheets
//
// [ExportValuesXLSX] and [ImportValuesXLSX] store the same list in the first
// column of the first sheet, under a header row. [ImportValues] picks the
// reader from the file extension.
package io
