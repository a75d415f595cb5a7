package domain

// Counts summarises row dispositions for a batch.
type Counts struct {
	Total              int `json:"total"`
	Saved              int `json:"saved"`
	Duplicate          int `json:"duplicate"`
	Invalid            int `json:"invalid"`
	Unmatched          int `json:"unmatched"`
	CommissionMismatch int `json:"commission_mismatch"`
}

// FormattedTotals are BatchTotals rendered with two decimal places.
type FormattedTotals struct {
	CODAmount       string `json:"cod_amount"`
	Cash            string `json:"cash"`
	CommissionValue string `json:"commission_value"`
	SettledAmount   string `json:"settled_amount"`
}

// BatchReport is the final summary of one import run.
type BatchReport struct {
	BatchID  string          `json:"batch_id,omitempty"`
	Kind     string          `json:"kind"`
	Filename string          `json:"filename,omitempty"`
	Counts   Counts          `json:"counts"`
	Totals   FormattedTotals `json:"totals"`
	Outcomes []RowOutcome    `json:"outcomes"`
}
