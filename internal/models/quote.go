package models

import "time"

// QuoteKind selects the upstream provider for a quote lookup
type QuoteKind string

const (
	QuoteStock  QuoteKind = "STOCK"
	QuoteCrypto QuoteKind = "CRYPTO"
	QuoteFX     QuoteKind = "FX"
)

// QuoteInput names one instrument to look up, e.g. PETR4/STOCK, BTC/CRYPTO, USD-BRL/FX
type QuoteInput struct {
	Ticker string    `json:"ticker" binding:"required"`
	Type   QuoteKind `json:"type" binding:"required,oneof=STOCK CRYPTO FX"`
}

// Quote is a price snapshot as reported by a provider
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          *string   `json:"name"`
	Price         float64   `json:"price"`
	ChangePercent *float64  `json:"change_percent"`
	Type          QuoteKind `json:"type"`
}

// JobStatus follows the task states reported to the frontend
type JobStatus string

const (
	JobPending JobStatus = "PENDING"
	JobStarted JobStatus = "STARTED"
	JobSuccess JobStatus = "SUCCESS"
	JobFailure JobStatus = "FAILURE"
)

// Terminal reports whether no further transition will happen.
func (s JobStatus) Terminal() bool {
	return s == JobSuccess || s == JobFailure
}

type QuoteJobResponse struct {
	TaskID string `json:"task_id"`
}

// QuoteJobStatus is the observable state of a queued quote batch
type QuoteJobStatus struct {
	TaskID     string    `json:"task_id"`
	Status     JobStatus `json:"status"`
	Result     []Quote   `json:"result"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"-"`
}
