package dto

import (
	"time"

	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

// CreateSessionRequest defines the data needed to open a reporting period for a client.
type CreateSessionRequest struct {
	ClientName  string           `json:"clientName" binding:"required,max=200"`
	PeriodStart *string          `json:"periodStart" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd   *string          `json:"periodEnd" binding:"omitempty,datetime=2006-01-02"`
	GSTRate     *decimal.Decimal `json:"gstRate" binding:"omitempty,gte=0,lte=1"` // Optional, defaults to the configured rate
}

// SessionResponse defines the data returned for a session.
type SessionResponse struct {
	SessionID     string          `json:"sessionID"`
	ClientName    string          `json:"clientName"`
	PeriodStart   *string         `json:"periodStart,omitempty"`
	PeriodEnd     *string         `json:"periodEnd,omitempty"`
	GSTRate       decimal.Decimal `json:"gstRate"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ListSessionsResponse wraps a list of sessions.
// ListSessionsParams holds the paging query of a session listing.
type ListSessionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"gte=1,lte=200"`
	NextToken *string `form:"nextToken"`
}

type ListSessionsResponse struct {
	Sessions  []SessionResponse `json:"sessions"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToSessionResponse converts a domain.Session to SessionResponse DTO.
func ToSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		SessionID:     s.SessionID,
		ClientName:    s.ClientName,
		PeriodStart:   formatDate(s.PeriodStart),
		PeriodEnd:     formatDate(s.PeriodEnd),
		GSTRate:       s.GSTRate,
		CreatedAt:     s.CreatedAt,
		CreatedBy:     s.CreatedBy,
		LastUpdatedAt: s.LastUpdatedAt,
		LastUpdatedBy: s.LastUpdatedBy,
	}
}

// ToListSessionsResponse converts a slice of domain.Session to DTO.
func ToListSessionsResponse(sessions []domain.Session, nextToken *string) ListSessionsResponse {
	list := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		list[i] = ToSessionResponse(&s)
	}
	return ListSessionsResponse{Sessions: list, NextToken: nextToken}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
