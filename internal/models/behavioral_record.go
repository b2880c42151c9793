package models

// BehavioralRecord is the normalized per-employee input consumed by the
// scoring core. One record covers one employee for one reporting period.
// All numeric fields are already coerced to finite values by the ingestion
// layer; the core never sees NaN/Inf.
type BehavioralRecord struct {
	// Identity
	User         string `json:"user" db:"user"`
	EmployeeName string `json:"employee_name,omitempty" db:"employee_name"`
	Department   string `json:"department,omitempty" db:"department"`
	JobTitle     string `json:"job_title,omitempty" db:"job_title"`
	Date         string `json:"date,omitempty" db:"record_date"` // YYYY-MM-DD, may be empty

	// Login activity
	LoginCount           float64 `json:"login_count" db:"login_count"`
	NightLogins          float64 `json:"night_logins" db:"night_logins"`
	UniquePCs            float64 `json:"unique_pcs,omitempty" db:"unique_pcs"`
	SessionDurationTotal float64 `json:"session_duration_total,omitempty" db:"session_duration_total"`
	SessionDurationAvg   float64 `json:"session_duration_avg,omitempty" db:"session_duration_avg"`

	// File operations
	FileActivityCount     float64 `json:"file_activity_count" db:"file_activity_count"`
	FileOpened            float64 `json:"file_opened,omitempty" db:"file_opened"`
	FileCopied            float64 `json:"file_copied,omitempty" db:"file_copied"`
	FileDeleted           float64 `json:"file_deleted,omitempty" db:"file_deleted"`
	FileDownloaded        float64 `json:"file_downloaded,omitempty" db:"file_downloaded"`
	FileUploaded          float64 `json:"file_uploaded,omitempty" db:"file_uploaded"`
	FileEdited            float64 `json:"file_edited,omitempty" db:"file_edited"`
	TotalFileOperations   float64 `json:"total_file_operations,omitempty" db:"total_file_operations"`
	SensitiveFilesAccessed float64 `json:"sensitive_files_accessed,omitempty" db:"sensitive_files_accessed"`
	UniqueFilesAccessed   float64 `json:"unique_files_accessed,omitempty" db:"unique_files_accessed"`
	SystemsAccessed       string  `json:"systems_accessed,omitempty" db:"systems_accessed"` // comma-separated

	// File operation events decoded from the upload's detail blob. Optional;
	// the scoring core treats absence the same as an empty slice.
	FileOperations []FileOperation `json:"file_operations,omitempty" db:"-"`

	// USB activity
	USBCount      float64 `json:"usb_count" db:"usb_count"`
	USBConnect    float64 `json:"usb_connect,omitempty" db:"usb_connect"`
	USBDisconnect float64 `json:"usb_disconnect,omitempty" db:"usb_disconnect"`

	// Email activity
	EmailsSent       float64 `json:"emails_sent,omitempty" db:"emails_sent"`
	ExternalMails    float64 `json:"external_mails,omitempty" db:"external_mails"`
	EmailAttachments float64 `json:"email_attachments,omitempty" db:"email_attachments"`
	AvgEmailSize     float64 `json:"avg_email_size,omitempty" db:"avg_email_size"`

	// Web activity
	HTTPRequests float64 `json:"http_requests,omitempty" db:"http_requests"`
	UniqueURLs   float64 `json:"unique_urls,omitempty" db:"unique_urls"`

	// Database activity
	DatabaseSessionDuration float64 `json:"database_session_duration,omitempty" db:"database_session_duration"`
	DatabaseQueryCount      float64 `json:"database_query_count,omitempty" db:"database_query_count"`
	DatabaseReadOps         float64 `json:"database_read_ops,omitempty" db:"database_read_ops"`
	DatabaseWriteOps        float64 `json:"database_write_ops,omitempty" db:"database_write_ops"`
	PrimaryDatabase         string  `json:"primary_database,omitempty" db:"primary_database"`

	// Upstream model outputs
	RiskScore    float64 `json:"risk_score" db:"risk_score"`       // externally supplied baseline
	AnomalyLabel int     `json:"anomaly_label" db:"anomaly_label"` // +1 normal, -1 flagged

	// Five-trait personality scores, each in [0,100]. TraitsProvided is set
	// only when the source data carried explicit trait columns; defaulted
	// values do not count as provided.
	TraitOpenness          float64 `json:"O,omitempty" db:"trait_o"`
	TraitConscientiousness float64 `json:"C,omitempty" db:"trait_c"`
	TraitExtraversion      float64 `json:"E,omitempty" db:"trait_e"`
	TraitAgreeableness     float64 `json:"A,omitempty" db:"trait_a"`
	TraitNeuroticism       float64 `json:"N,omitempty" db:"trait_n"`
	TraitsProvided         bool    `json:"traits_provided" db:"traits_provided"`
}

// FileOperation is one individual file event carried inside an uploaded
// record's detail blob.
type FileOperation struct {
	Timestamp   string `json:"timestamp"`
	Operation   string `json:"operation"`
	FileName    string `json:"file_name"`
	IsSensitive bool   `json:"is_sensitive"`
	System      string `json:"system,omitempty"`
}

// DisplayName returns the employee name, falling back to the user id.
func (r *BehavioralRecord) DisplayName() string {
	if r.EmployeeName != "" {
		return r.EmployeeName
	}
	return r.User
}

// Traits returns the five personality scores in O,C,E,A,N order.
func (r *BehavioralRecord) Traits() [5]float64 {
	return [5]float64{
		r.TraitOpenness,
		r.TraitConscientiousness,
		r.TraitExtraversion,
		r.TraitAgreeableness,
		r.TraitNeuroticism,
	}
}
