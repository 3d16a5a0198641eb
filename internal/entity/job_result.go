package entity

// JobResult is the derived payload attached to a job once it completes.
type JobResult struct {
	JobID                 string            `json:"job_id"`
	Status                string            `json:"status"`
	CompletedAt           string            `json:"completed_at,omitempty"`
	TotalFiles            int               `json:"total_files"`
	SuccessfullyProcessed int               `json:"successfully_processed"`
	FailedFiles           int               `json:"failed_files"`
	ProcessedFiles        []ProcessedFile   `json:"processed_files,omitempty"`
	LLMAnalysis           *LLMAnalysis      `json:"llm_analysis,omitempty"`
	ExtractedCSVData      *ExtractedCSVData `json:"extracted_csv_data,omitempty"`
	LedgerUpdate          *LedgerUpdate     `json:"ledger_update,omitempty"`
}

// ProcessedFile is the per-file OCR summary inside a JobResult.
type ProcessedFile struct {
	OriginalFilename string     `json:"original_filename"`
	StoredFilename   string     `json:"stored_filename"`
	FileNumber       int        `json:"file_number"`
	Status           string     `json:"status,omitempty"`
	TablesExtracted  int        `json:"tables_extracted,omitempty"`
	OCRResult        *OCRResult `json:"ocr_result,omitempty"`
}

// OCRResult summarizes what the OCR stage read out of one file.
type OCRResult struct {
	TotalPages int        `json:"total_pages"`
	TotalWords int        `json:"total_words"`
	Tables     []OCRTable `json:"tables,omitempty"`
}

// OCRTable is one table the OCR stage recognized.
type OCRTable struct {
	TableNumber int        `json:"table_number"`
	Rows        int        `json:"rows"`
	Columns     int        `json:"columns"`
	Headers     []string   `json:"headers,omitempty"`
	Data        [][]string `json:"data,omitempty"`
	Accuracy    float64    `json:"accuracy,omitempty"`
}

// LLMAnalysis is the free-text analysis blob produced alongside the rows.
type LLMAnalysis struct {
	Response       string `json:"response"`
	ModelUsed      string `json:"model_used"`
	TotalTokens    int    `json:"total_tokens"`
	ResponseLength int    `json:"response_length,omitempty"`
	ContextLength  int    `json:"context_length,omitempty"`
}

// ExtractedCSVData carries the three loosely-delimited row lists the
// reconciliation engine consumes.
type ExtractedCSVData struct {
	CSVData CSVRows `json:"csv_data"`
}

// CSVRows holds raw delimiter-joined lines, one logical record per string.
// Field counts inside each line are untrusted.
type CSVRows struct {
	InvoiceRows      []string `json:"invoice_rows"`
	DeliveryNoteRows []string `json:"delivery_note_rows"`
	AnomalyRows      []string `json:"anomaly_rows"`
}

// LedgerUpdate reports what the service appended to its accumulating ledger.
type LedgerUpdate struct {
	InvoiceRowsAdded      int    `json:"invoice_rows_added"`
	DeliveryNoteRowsAdded int    `json:"delivery_note_rows_added"`
	AnomalyRowsAdded      int    `json:"anomaly_rows_added"`
	UpdatedLedgerPath     string `json:"updated_ledger_path,omitempty"`
	Format                string `json:"format,omitempty"`
}
