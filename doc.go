// Package tabtext renders tables of typed records in text formats and
// loads them back.
//
// A [Table] is a sequence of [Record] values, each an ordered mapping from
// column name to [Value]. Records may be sparse. The central entry points
// are [Write] and [Marshal], which take a [Format] and [Options]:
//
//	tabtext.Write(os.Stdout, tabtext.Markdown, table, tabtext.Options{
//		Selects: []string{"name", "price:{:.2f}@cost"},
//	})
//
// # Column specs
//
// Headers and selects are lists of spec strings. Each string holds one or
// more clauses joined by '|'; clauses of one string stay adjacent in the
// output. A clause is
//
//	name[<v|>v|=v][:format][@rename[@sortkey]]
//
// where the format is a brace template ("{:.2f}", "{:>8}", "{:$}") or a
// printf directive ("%s", "%.2f"), and a rename that does not start with a
// letter is a sort key. A clause like "{first} {last}@name" combines source
// columns through a template. "#" is the row number and "*" stands for every
// column not named otherwise. Selects starting with '@' are directives:
// "@noheaders", "@unique", "@noright" or a format name such as "@csv".
//
// Selects decide the column set when present; headers give default order,
// formats and renames. Rows are sorted by the named columns in order, with
// null before false, true, numbers, dates and text.
//
// # Text conventions
//
// Every text format writes null as "~", false as "(no)" and true as
// "(yes)", and [Load] reads them back. Other cells decode through
// [GuessValue]: integer, float, date-time and date patterns are tried
// before plain text, so digit-only text reads back as an integer.
//
// # Formats
//
//   - [Markdown] — GFM pipe table with right-aligned numeric columns
//   - [Wide], [Plain] — padded columns without pipes; Plain omits the header
//   - [Boxed] — box drawing with [BorderStyle]
//   - [HTML] — table with a legend list
//   - [CSV], [TSV], [Data], [List] — delimited text
//   - [JSON], [JSONL], [YAML] — typed values, sparse records kept sparse
//   - [GoTemplate] — one template execution per row
//
// Plain is named "text" and Boxed "table" on the command line.
// Spreadsheet workbooks are written and read by the xlsx subpackage.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrUnsupportedFormat] — unknown format string
//   - [ErrInvalidTemplate] — invalid go-template syntax
//   - [ErrColumnConflict] — two sources renamed to one column
//   - [ErrMalformedInput] — a loader could not parse its input
package tabtext
