package tabtext

import (
	"io"
	"iter"
)

// WriteIter collects records from an iterator and writes them to w. Every
// format needs the whole table for sorting and column widths, so nothing is
// written before the sequence ends.
func WriteIter(w io.Writer, f Format, seq iter.Seq[Record], opts Options) error {
	return Write(w, f, Collect(seq), opts)
}

// WriteChan collects records from a channel and writes them to w.
// It is a thin wrapper around [WriteIter].
func WriteChan(w io.Writer, f Format, ch <-chan Record, opts Options) error {
	return WriteIter(w, f, chanToIter(ch), opts)
}

// Collect gathers a record sequence into a table.
func Collect(seq iter.Seq[Record]) Table {
	var t Table
	for r := range seq {
		t = append(t, r)
	}
	return t
}

// All returns an iterator over the records of t.
func (t Table) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range t {
			if !yield(r) {
				return
			}
		}
	}
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}
