package model

import "time"

// RequestKind identifies which HITL workflow an approval request belongs to.
type RequestKind string

const (
	KindContentMarketing RequestKind = "content_marketing"
	KindReviewResponse   RequestKind = "review_response"
)

// RiskLevel classifies an approval request by assessed risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ApprovalState is the lifecycle state of an approval request.
//
// pending → in_review → approved | rejected
// pending | in_review → escalated (explicit or via expiry sweep)
type ApprovalState string

const (
	StatePending   ApprovalState = "pending"
	StateInReview  ApprovalState = "in_review"
	StateApproved  ApprovalState = "approved"
	StateRejected  ApprovalState = "rejected"
	StateEscalated ApprovalState = "escalated"
)

// ApprovalRequest represents one piece of content or review response awaiting
// a human decision.
type ApprovalRequest struct {
	ID            string        `json:"id"`
	TenantID      string        `json:"tenant_id"`
	Kind          RequestKind   `json:"kind"`
	Title         string        `json:"title"`
	Body          string        `json:"body"`
	RiskScore     int           `json:"risk_score"`
	RiskLevel     RiskLevel     `json:"risk_level"`
	State         ApprovalState `json:"state"`
	ReviewerRoles []string      `json:"reviewer_roles"`
	AssetID       string        `json:"asset_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ApprovalEvent is one append-only audit entry for an approval request.
type ApprovalEvent struct {
	ID        string        `json:"id"`
	RequestID string        `json:"request_id"`
	Actor     string        `json:"actor"`
	Action    string        `json:"action"` // submitted, auto_approved, review_started, approved, rejected, escalated, expired
	Note      string        `json:"note,omitempty"`
	FromState ApprovalState `json:"from_state"`
	ToState   ApprovalState `json:"to_state"`
	CreatedAt time.Time     `json:"created_at"`
}
