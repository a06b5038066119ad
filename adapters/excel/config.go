package excel

// ExcelConfig holds configuration for a spreadsheet observation source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	Sheet    string `json:"sheet"`  // empty selects the first sheet
	Column   string `json:"column"` // header name, or empty for the first column
	Strict   bool   `json:"strict"` // fail on any non-numeric cell instead of skipping it
}

// DefaultExcelConfig returns sensible defaults for spreadsheet loading
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{}
}
