package api

// Subdomain is one list type within a domain, as stored on the backend.
type Subdomain struct {
	ID       int    `json:"subdomain_id"`
	DomainID int    `json:"domain_id"`
	Name     string `json:"subdomain_name"`
}

// Version is one entry in a list's version history.
type Version struct {
	ID              int    `json:"version_id"`
	RequestID       int    `json:"request_id"`
	Number          int    `json:"version_number"`
	ChangeType      string `json:"change_type"`
	ChangeRationale string `json:"change_rationale"`
	CreatedBy       string `json:"created_by"`
	IsCurrent       bool   `json:"is_current"`
	CreatedAt       string `json:"created_at,omitempty"`

	// Present on domain-scoped queries.
	List *ListRequest `json:"list_requests,omitempty"`
}

// WorkLog is one recorded activity against a list.
type WorkLog struct {
	ID                  int    `json:"log_id"`
	RequestID           int    `json:"request_id"`
	VersionID           *int   `json:"version_id,omitempty"`
	WorkerName          string `json:"worker_name"`
	ActivityDescription string `json:"activity_description"`
	DecisionsMade       string `json:"decisions_made,omitempty"`
	ActivityDate        string `json:"activity_date,omitempty"`

	List *ListRequest `json:"list_requests,omitempty"`
}

// ListRequest is a list summary row.
type ListRequest struct {
	ID             int        `json:"request_id"`
	SubdomainID    int        `json:"subdomain_id"`
	RequesterName  string     `json:"requester_name"`
	RequestPurpose string     `json:"request_purpose"`
	Status         string     `json:"status,omitempty"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	CreatedAt      string     `json:"created_at,omitempty"`
	Subdomain      *Subdomain `json:"subdomains,omitempty"`
	CurrentVersion *Version   `json:"current_version,omitempty"`
}

// Snapshot is the current item set of a list.
type Snapshot struct {
	VersionID     *int     `json:"version_id"`
	VersionNumber int      `json:"version_number"`
	Items         []Record `json:"items"`
}

// ListDetail is a list with its subdomain and current items.
type ListDetail struct {
	ListRequest
	SubdomainInfo *Subdomain `json:"subdomain,omitempty"`
	Snapshot      *Snapshot  `json:"current_snapshot,omitempty"`
}

// Items returns the current items, or nil when the list has no snapshot.
func (d ListDetail) Items() []Record {
	if d.Snapshot == nil {
		return nil
	}
	return d.Snapshot.Items
}

// NewList is the body for creating a list.
type NewList struct {
	SubdomainID    int    `json:"subdomain_id" validate:"required,gt=0"`
	RequesterName  string `json:"requester_name" validate:"required"`
	RequestPurpose string `json:"request_purpose" validate:"required"`
	Status         string `json:"status,omitempty"`
	AssignedTo     string `json:"assigned_to,omitempty"`
}

// ListUpdate carries the fields to change on a list. Nil fields are left alone.
type ListUpdate struct {
	RequesterName  *string `json:"requester_name,omitempty"`
	RequestPurpose *string `json:"request_purpose,omitempty"`
	Status         *string `json:"status,omitempty"`
	AssignedTo     *string `json:"assigned_to,omitempty"`
}

// BulkUploadResult is what the list-scoped bulk endpoints report.
type BulkUploadResult struct {
	Success         bool   `json:"success"`
	ItemsAdded      int    `json:"items_added"`
	TableUsed       string `json:"table_used"`
	BulkOperationID string `json:"bulk_operation_id"`
	VersionID       *int   `json:"version_id"`
	VersionNumber   int    `json:"version_number"`
}

// NewVersion is the body for recording a version.
type NewVersion struct {
	RequestID       int    `json:"request_id" validate:"required,gt=0"`
	VersionNumber   int    `json:"version_number" validate:"gte=0"`
	ChangeType      string `json:"change_type" validate:"required"`
	ChangeRationale string `json:"change_rationale" validate:"required"`
	CreatedBy       string `json:"created_by" validate:"required"`
}

// NewWorkLog is the body for recording a work log.
type NewWorkLog struct {
	RequestID           int    `json:"request_id" validate:"required,gt=0"`
	VersionID           *int   `json:"version_id,omitempty"`
	WorkerName          string `json:"worker_name" validate:"required"`
	ActivityDescription string `json:"activity_description" validate:"required"`
	DecisionsMade       string `json:"decisions_made,omitempty"`
}

// ChatTurn is one line of assistant conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the assistant query body.
type ChatRequest struct {
	Question    string     `json:"question" validate:"required"`
	ChatHistory []ChatTurn `json:"chat_history"`
	RequestID   *int       `json:"request_id,omitempty"`
	SessionID   string     `json:"session_id,omitempty"`
}

// ChatResponse is the assistant answer.
type ChatResponse struct {
	Answer       string `json:"answer"`
	GeneratedSQL string `json:"generated_sql,omitempty"`
	RowCount     int    `json:"row_count"`
	QueryType    string `json:"query_type,omitempty"`
}

// IngestResult reports what the backend did with an ingested document.
type IngestResult struct {
	Message           string `json:"message"`
	DocID             string `json:"doc_id"`
	UploaderName      string `json:"uploader_name"`
	Filename          string `json:"filename"`
	Action            string `json:"action"`
	Subject           string `json:"subject"`
	ChangesMade       int    `json:"changes_made"`
	ChangeDescription string `json:"change_description"`
	ChunksCreated     int    `json:"chunks_created"`
	VersionNumber     int    `json:"version_number"`
}
