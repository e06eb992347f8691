package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrBodyRequired    = errors.New("body is required")
	ErrRequestNotFound = errors.New("approval request not found")
	ErrInvalidDecision = errors.New("decision must be approve or reject")
	// ErrNotDecidable is returned when a request is already in a terminal state.
	ErrNotDecidable = errors.New("request is not awaiting a decision")
)

// Risk keyword weights. Substring counting over the lowercased body, kept
// deliberately simple: this gates human review, it does not replace it.
var riskKeywords = map[string]int{
	"lawsuit":        3,
	"legal":          2,
	"sue":            3,
	"fraud":          3,
	"scam":           3,
	"discrimination": 3,
	"refund":         1,
	"complaint":      1,
	"guarantee":      2,
	"cure":           2,
	"free money":     3,
	"risk-free":      2,
}

// Risk level thresholds over the keyword score.
const (
	mediumRiskAt   = 2
	highRiskAt     = 4
	criticalRiskAt = 7
)

// reviewerRoutes maps assessed risk to the reviewer roles that must see the
// request. Critical always includes compliance.
var reviewerRoutes = map[model.RiskLevel][]string{
	model.RiskLow:      {"marketing_specialist"},
	model.RiskMedium:   {"marketing_manager"},
	model.RiskHigh:     {"marketing_manager", "brand_director"},
	model.RiskCritical: {"marketing_manager", "brand_director", "compliance"},
}

// ApprovalListResult is the service-level DTO for paginated approval requests.
type ApprovalListResult struct {
	Items []model.ApprovalRequest `json:"data"`
	Total int                     `json:"total"`
}

// SubmitInput carries a new approval request into the workflow.
type SubmitInput struct {
	TenantID string
	Kind     model.RequestKind
	Title    string
	Body     string
	AssetID  string
	Actor    string
}

// Decision is a reviewer's verdict on a pending request.
type Decision struct {
	Actor   string
	Approve bool
	Note    string
}

// ApprovalService defines the HITL approval workflow use cases.
type ApprovalService interface {
	// Submit assesses risk, routes reviewers, and either auto-approves
	// low-risk content or parks the request pending review.
	Submit(ctx context.Context, in SubmitInput) (*model.ApprovalRequest, error)

	// Get returns a request with its audit events.
	Get(ctx context.Context, id string) (*model.ApprovalRequest, []model.ApprovalEvent, error)

	// List returns a tenant's requests filtered by optional state.
	List(ctx context.Context, tenantID string, state model.ApprovalState, limit, offset int) (*ApprovalListResult, error)

	// StartReview claims a pending request for a reviewer, moving it to
	// in_review so other reviewers can see it is taken.
	StartReview(ctx context.Context, id, actor string) (*model.ApprovalRequest, error)

	// Decide applies an approve/reject verdict to a pending or in-review request.
	Decide(ctx context.Context, id string, d Decision) (*model.ApprovalRequest, error)

	// Escalate moves a request to the escalated state.
	Escalate(ctx context.Context, id, actor, note string) (*model.ApprovalRequest, error)

	// SweepExpired escalates requests pending past the configured deadline.
	// Returns the number of requests escalated.
	SweepExpired(ctx context.Context) (int, error)
}

type approvalService struct {
	repo     repository.ApprovalRepository
	cfg      config.HITLConfig
	now      func() time.Time
	notifier ApprovalNotifier
}

// ApprovalNotifier receives workflow transitions for realtime fan-out.
// Implemented by the collaboration hub; nil disables notifications.
type ApprovalNotifier interface {
	NotifyApproval(tenantID string, req *model.ApprovalRequest, action string)
}

// NewApprovalService constructs the HITL approval workflow service.
func NewApprovalService(repo repository.ApprovalRepository, cfg config.HITLConfig, notifier ApprovalNotifier) ApprovalService {
	return &approvalService{repo: repo, cfg: cfg, now: time.Now, notifier: notifier}
}

// AssessRisk scores the body by keyword weights and maps the score to a level.
func AssessRisk(body string) (int, model.RiskLevel) {
	lower := strings.ToLower(body)
	score := 0
	for kw, weight := range riskKeywords {
		score += strings.Count(lower, kw) * weight
	}
	switch {
	case score >= criticalRiskAt:
		return score, model.RiskCritical
	case score >= highRiskAt:
		return score, model.RiskHigh
	case score >= mediumRiskAt:
		return score, model.RiskMedium
	default:
		return score, model.RiskLow
	}
}

func (s *approvalService) Submit(ctx context.Context, in SubmitInput) (*model.ApprovalRequest, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, ErrBodyRequired
	}
	if in.Kind != model.KindContentMarketing && in.Kind != model.KindReviewResponse {
		in.Kind = model.KindContentMarketing
	}

	score, level := AssessRisk(in.Body)

	req := &model.ApprovalRequest{
		TenantID:      in.TenantID,
		Kind:          in.Kind,
		Title:         in.Title,
		Body:          in.Body,
		RiskScore:     score,
		RiskLevel:     level,
		State:         model.StatePending,
		ReviewerRoles: reviewerRoutes[level],
		AssetID:       in.AssetID,
	}

	autoApproved := level == model.RiskLow && score < s.cfg.AutoApproveBelow
	if autoApproved {
		req.State = model.StateApproved
		req.ReviewerRoles = nil
	}

	stored, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create approval request: %w", err)
	}

	action := "submitted"
	if autoApproved {
		action = "auto_approved"
	}
	s.appendEvent(ctx, stored.ID, in.Actor, action, "", model.StatePending, stored.State)
	s.notify(stored.TenantID, stored, action)
	return stored, nil
}

func (s *approvalService) Get(ctx context.Context, id string) (*model.ApprovalRequest, []model.ApprovalEvent, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, err
	}
	events, err := s.repo.Events(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return req, events, nil
}

func (s *approvalService) List(ctx context.Context, tenantID string, state model.ApprovalState, limit, offset int) (*ApprovalListResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, tenantID, state, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ApprovalListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *approvalService) StartReview(ctx context.Context, id, actor string) (*model.ApprovalRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	// Only a pending request can be claimed; a second reviewer loses the race.
	from := []model.ApprovalState{model.StatePending}
	if err := s.repo.UpdateState(ctx, id, from, model.StateInReview); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotDecidable
		}
		return nil, err
	}

	s.appendEvent(ctx, id, actor, "review_started", "", req.State, model.StateInReview)
	req.State = model.StateInReview
	s.notify(req.TenantID, req, "review_started")
	return req, nil
}

func (s *approvalService) Decide(ctx context.Context, id string, d Decision) (*model.ApprovalRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	to := model.StateApproved
	action := "approved"
	if !d.Approve {
		to = model.StateRejected
		action = "rejected"
	}

	from := []model.ApprovalState{model.StatePending, model.StateInReview, model.StateEscalated}
	if err := s.repo.UpdateState(ctx, id, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotDecidable
		}
		return nil, err
	}

	s.appendEvent(ctx, id, d.Actor, action, d.Note, req.State, to)
	req.State = to
	s.notify(req.TenantID, req, action)
	return req, nil
}

func (s *approvalService) Escalate(ctx context.Context, id, actor, note string) (*model.ApprovalRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	from := []model.ApprovalState{model.StatePending, model.StateInReview}
	if err := s.repo.UpdateState(ctx, id, from, model.StateEscalated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotDecidable
		}
		return nil, err
	}

	s.appendEvent(ctx, id, actor, "escalated", note, req.State, model.StateEscalated)
	req.State = model.StateEscalated
	s.notify(req.TenantID, req, "escalated")
	return req, nil
}

func (s *approvalService) SweepExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.PendingDeadline)
	expired, err := s.repo.ListPendingBefore(ctx, cutoff, 100)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range expired {
		req := &expired[i]
		from := []model.ApprovalState{model.StatePending, model.StateInReview}
		if err := s.repo.UpdateState(ctx, req.ID, from, model.StateEscalated); err != nil {
			// Raced with a reviewer decision; skip.
			continue
		}
		s.appendEvent(ctx, req.ID, "system", "expired", "pending past deadline", req.State, model.StateEscalated)
		req.State = model.StateEscalated
		s.notify(req.TenantID, req, "expired")
		count++
	}
	return count, nil
}

func (s *approvalService) appendEvent(ctx context.Context, requestID, actor, action, note string, from, to model.ApprovalState) {
	if actor == "" {
		actor = "system"
	}
	// Audit failure must not fail the transition; the state row is the source
	// of truth.
	_ = s.repo.AppendEvent(ctx, &model.ApprovalEvent{
		RequestID: requestID,
		Actor:     actor,
		Action:    action,
		Note:      note,
		FromState: from,
		ToState:   to,
	})
}

func (s *approvalService) notify(tenantID string, req *model.ApprovalRequest, action string) {
	if s.notifier != nil {
		s.notifier.NotifyApproval(tenantID, req, action)
	}
}
