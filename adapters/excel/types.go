package excel

// ColumnData is one numeric column pulled out of a sheet or CSV file
type ColumnData struct {
	Header  string    // column header, or a positional name when the file has none
	Values  []float64 // numeric cells in row order
	Skipped int       // non-empty cells that were not finite numbers
	Rows    int       // data rows inspected
}
