package models

// ParquetFinding defines the archive schema for findings using parquet-go/parquet-go.
// Optional fields use pointers; slices are stored as lists.
type ParquetFinding struct {
	RunID         string   `parquet:"run_id"`
	Action        string   `parquet:"action"`
	Target        string   `parquet:"target"`
	Kind          string   `parquet:"kind"`
	Severity      string   `parquet:"severity"`
	Evidence      *string  `parquet:"evidence,optional"`
	Parameter     *string  `parquet:"parameter,optional"`
	Payload       *string  `parquet:"payload,optional"`
	StatusCode    *int32   `parquet:"status_code,optional"`
	Method        *string  `parquet:"method,optional"`
	Parameters    []string `parquet:"parameters,list"`
	Tool          *string  `parquet:"tool,optional"`
	CWE           *string  `parquet:"cwe,optional"`
	ScanTimestamp int64    `parquet:"scan_timestamp"` // unix millis
}

// ToParquet converts a finding into its archive row
func (f Finding) ToParquet(runID, action string, scanTimestampMillis int64) ParquetFinding {
	row := ParquetFinding{
		RunID:         runID,
		Action:        action,
		Target:        f.Target,
		Kind:          f.Kind,
		Severity:      string(f.Severity),
		Evidence:      StringPtrOrNil(f.Evidence),
		Parameter:     StringPtrOrNil(f.Parameter),
		Payload:       StringPtrOrNil(f.Payload),
		Method:        StringPtrOrNil(f.Method),
		Parameters:    f.Parameters,
		Tool:          StringPtrOrNil(f.Tool),
		CWE:           StringPtrOrNil(f.CWE),
		ScanTimestamp: scanTimestampMillis,
	}
	if f.StatusCode != 0 {
		code := int32(f.StatusCode)
		row.StatusCode = &code
	}
	return row
}

// StringPtrOrNil returns nil for the empty string
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
