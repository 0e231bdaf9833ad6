package diagnosis

// Suggestion is one ranked disease guess for a scanned crop image.
// Probability is in [0,1]. Summary is filled in by a follow-up advice call.
type Suggestion struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Probability    float64 `json:"probability"`
	ScientificName string  `json:"scientific_name,omitempty"`
	Summary        string  `json:"summary"`
}

// Report is the /analyze response payload the mobile client renders.
type Report struct {
	Result ReportResult `json:"result"`
}

// ReportResult wraps the ordered disease list.
type ReportResult struct {
	Diseases []Suggestion `json:"diseases"`
}
