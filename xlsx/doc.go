// Package xlsx writes assembled tables as Office Open XML workbooks and reads
// the first sheet of a workbook back into records.
//
// The writer produces the minimal set of parts a spreadsheet application
// needs: content types, relationships, the workbook, a style sheet and one
// worksheet per sheet. Cell styles are deduplicated, so a workbook holds one
// style per distinct pair of number format and alignment.
//
// # Cell encoding
//
//   - Int: numeric, format "#,##0", right aligned
//   - Float: numeric, format "#,##0.00" (plus the currency for "$" columns)
//   - Date and DateTime: day serials since 1899-12-30, date formats
//   - Bool: boolean cell
//   - Text: inline string; the empty string is stored as a single space
//   - Null: no cell
//
// The reader accepts workbooks from other producers as well: shared strings,
// formula strings, error cells, ISO date cells and the builtin date formats
// are understood.
package xlsx
