package xlsx

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// epoch is day zero of the 1900 date system as spreadsheets count it,
// past the phantom 1900-02-29.
var epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// dateSerial returns the day count of a date.
func dateSerial(t time.Time) int64 {
	return (t.Unix() - epoch.Unix()) / secondsPerDay
}

// dateTimeSerial returns the day count of t with the time of day as the
// fraction.
func dateTimeSerial(t time.Time) float64 {
	return float64(t.Unix()-epoch.Unix()) / secondsPerDay
}

// fromSerial converts a serial back to a time, rounding to the second.
func fromSerial(v float64) time.Time {
	days := math.Floor(v)
	secs := math.Round((v - days) * secondsPerDay)
	return epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}

// formatNumber writes a float so that it always reads back as a float.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// cellRef returns the A1 reference of a zero-based column and one-based row.
func cellRef(col, row int) string {
	return columnName(col) + strconv.Itoa(row)
}

// columnName returns the letters of a zero-based column index.
func columnName(col int) string {
	var b []byte
	for col++; col > 0; col = (col - 1) / 26 {
		b = append(b, byte('A'+(col-1)%26))
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// splitRef splits an A1 reference into a zero-based column and one-based
// row. ok is false when ref is not a cell reference.
func splitRef(ref string) (col, row int, ok bool) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, false
	}
	row, err := strconv.Atoi(ref[i:])
	if err != nil || row < 1 {
		return 0, 0, false
	}
	return col - 1, row, true
}
