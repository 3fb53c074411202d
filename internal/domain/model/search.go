package model

// Classifier categories. REJECT ends the job before any search happens.
const (
	CategoryDIY       = "DIY"
	CategoryKIControl = "KI_CONTROL"
	CategoryReject    = "REJECT"
	CategoryUnknown   = "UNKNOWN"
)

// Decision is the shared outcome shape of both gating agents (classifier
// and auditor): a deterministic rule-based implementation can stand in for
// the LLM-backed one in tests.
type Decision struct {
	Allowed  bool
	Category string
	Reasons  []string
}

// SearchTask is one planned unit of fan-out work. Index fixes the task's
// slot in the result collection regardless of completion order.
type SearchTask struct {
	Index  int    `json:"-"`
	Reason string `json:"reason"`
	Query  string `json:"query"`
}

// SearchResult is the index-tagged outcome of one SearchTask. A failed task
// keeps its slot with Err set and an empty summary; it is never dropped.
type SearchResult struct {
	Index   int    `json:"-"`
	Query   string `json:"query"`
	Summary string `json:"summary"`
	Err     error  `json:"-"`
}

// Succeeded reports whether the task produced a usable summary.
func (r SearchResult) Succeeded() bool { return r.Err == nil && r.Summary != "" }
