package dto

// RunListParams represents query parameters for listing runs.
type RunListParams struct {
	Kind    string `json:"kind"`
	Bank    string `json:"bank"`
	Account string `json:"account"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

// DefaultRunListParams returns default values for run list params.
func DefaultRunListParams() RunListParams {
	return RunListParams{
		Limit: 20,
	}
}
