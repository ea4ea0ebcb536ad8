package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is one client's reporting period: the working set of uploaded transactions.
type Session struct {
	SessionID   string          `json:"sessionID"`
	UserID      string          `json:"userID"`
	ClientName  string          `json:"clientName"`
	PeriodStart *time.Time      `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time      `json:"periodEnd,omitempty"`
	GSTRate     decimal.Decimal `json:"gstRate"` // statutory rate for the period
	AuditFields
}
