package model

// StatsSummary is the derived usage summary for one project. Computed by
// scanning the project's generations and components at call time — a
// point-in-time snapshot, not guaranteed consistent with workers running
// concurrently.
type StatsSummary struct {
	TotalGenerations      int `json:"totalGenerations"`
	SuccessfulGenerations int `json:"successfulGenerations"`
	FailedGenerations     int `json:"failedGenerations"`
	TotalTokens           int `json:"totalTokens"`
	TotalComponents       int `json:"totalComponents"`
	TotalComponentLines   int `json:"totalComponentLines"`
}
