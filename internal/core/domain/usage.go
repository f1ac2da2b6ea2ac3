package domain

import "time"

// UsageRecord is one billed remote call. Records are append-only: usage
// already incurred is kept even when a later step of the same operation
// fails.
type UsageRecord struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Operation  string    `json:"operation"`
	InputItems int       `json:"input_items"`
	Tokens     int       `json:"tokens"`
	Cost       float64   `json:"cost"`
	CreatedAt  time.Time `json:"created_at"`
}

type UsageTotals struct {
	Calls  int     `json:"calls"`
	Tokens int     `json:"tokens"`
	Cost   float64 `json:"cost"`
}
