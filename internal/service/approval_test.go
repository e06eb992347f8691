package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository/mocks"
)

type recordingNotifier struct {
	actions []string
}

func (n *recordingNotifier) NotifyApproval(tenantID string, req *model.ApprovalRequest, action string) {
	n.actions = append(n.actions, action)
}

func TestAssessRisk(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		score int
		level model.RiskLevel
	}{
		{"clean copy", "Launch copy for the spring campaign", 0, model.RiskLow},
		{"single weak keyword", "we will refund unhappy customers", 1, model.RiskLow},
		{"two weak keywords", "refund after a complaint", 2, model.RiskMedium},
		{"legal plus guarantee", "legal guarantee of results", 4, model.RiskHigh},
		{"stacked heavy keywords", "fraud lawsuit risk-free", 8, model.RiskCritical},
		{"repeated keyword counts twice", "guarantee today, guarantee forever", 4, model.RiskHigh},
		{"case insensitive", "LAWSUIT pending", 3, model.RiskMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, level := AssessRisk(tc.body)
			assert.Equal(t, tc.score, score)
			assert.Equal(t, tc.level, level)
		})
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	cfg := config.HITLConfig{AutoApproveBelow: 2, PendingDeadline: 24 * time.Hour}

	t.Run("validation", func(t *testing.T) {
		svc := NewApprovalService(new(mocks.MockApprovalRepository), cfg, nil)

		_, err := svc.Submit(ctx, SubmitInput{TenantID: "tnt-01", Body: "body"})
		assert.ErrorIs(t, err, ErrTitleRequired)

		_, err = svc.Submit(ctx, SubmitInput{TenantID: "tnt-01", Title: "Promo", Body: "  "})
		assert.ErrorIs(t, err, ErrBodyRequired)
	})

	t.Run("low risk auto approves", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		notifier := &recordingNotifier{}
		svc := NewApprovalService(repo, cfg, notifier)

		repo.On("Create", ctx, mock.MatchedBy(func(req *model.ApprovalRequest) bool {
			return req.State == model.StateApproved && req.ReviewerRoles == nil && req.RiskScore == 1
		})).Return(&model.ApprovalRequest{ID: "req-1", TenantID: "tnt-01", State: model.StateApproved}, nil)
		repo.On("AppendEvent", ctx, mock.MatchedBy(func(ev *model.ApprovalEvent) bool {
			return ev.Action == "auto_approved" && ev.Actor == "editor"
		})).Return(nil)

		out, err := svc.Submit(ctx, SubmitInput{
			TenantID: "tnt-01",
			Kind:     model.KindContentMarketing,
			Title:    "Promo",
			Body:     "we will refund unhappy customers",
			Actor:    "editor",
		})
		require.NoError(t, err)
		assert.Equal(t, model.StateApproved, out.State)
		assert.Equal(t, []string{"auto_approved"}, notifier.actions)
		repo.AssertExpectations(t)
	})

	t.Run("high risk routes reviewers", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("Create", ctx, mock.MatchedBy(func(req *model.ApprovalRequest) bool {
			return req.State == model.StatePending &&
				req.RiskLevel == model.RiskHigh &&
				assert.ObjectsAreEqual([]string{"marketing_manager", "brand_director"}, req.ReviewerRoles)
		})).Return(&model.ApprovalRequest{ID: "req-2", State: model.StatePending}, nil)
		repo.On("AppendEvent", ctx, mock.MatchedBy(func(ev *model.ApprovalEvent) bool {
			return ev.Action == "submitted" && ev.Actor == "system"
		})).Return(nil)

		out, err := svc.Submit(ctx, SubmitInput{
			TenantID: "tnt-01",
			Title:    "Promo",
			Body:     "legal guarantee of results",
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatePending, out.State)
		repo.AssertExpectations(t)
	})

	t.Run("unknown kind defaults to content marketing", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("Create", ctx, mock.MatchedBy(func(req *model.ApprovalRequest) bool {
			return req.Kind == model.KindContentMarketing
		})).Return(&model.ApprovalRequest{ID: "req-3"}, nil)
		repo.On("AppendEvent", ctx, mock.Anything).Return(nil)

		_, err := svc.Submit(ctx, SubmitInput{
			TenantID: "tnt-01",
			Kind:     model.RequestKind("newsletter"),
			Title:    "Promo",
			Body:     "legal guarantee of results",
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()
	cfg := config.HITLConfig{AutoApproveBelow: 2, PendingDeadline: 24 * time.Hour}
	decidable := []model.ApprovalState{model.StatePending, model.StateInReview, model.StateEscalated}

	t.Run("approve", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		notifier := &recordingNotifier{}
		svc := NewApprovalService(repo, cfg, notifier)

		repo.On("FindByID", ctx, "req-1").
			Return(&model.ApprovalRequest{ID: "req-1", TenantID: "tnt-01", State: model.StatePending}, nil)
		repo.On("UpdateState", ctx, "req-1", decidable, model.StateApproved).Return(nil)
		repo.On("AppendEvent", ctx, mock.MatchedBy(func(ev *model.ApprovalEvent) bool {
			return ev.Action == "approved" && ev.Note == "looks fine" && ev.ToState == model.StateApproved
		})).Return(nil)

		out, err := svc.Decide(ctx, "req-1", Decision{Actor: "reviewer", Approve: true, Note: "looks fine"})
		require.NoError(t, err)
		assert.Equal(t, model.StateApproved, out.State)
		assert.Equal(t, []string{"approved"}, notifier.actions)
		repo.AssertExpectations(t)
	})

	t.Run("reject", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("FindByID", ctx, "req-1").
			Return(&model.ApprovalRequest{ID: "req-1", State: model.StateInReview}, nil)
		repo.On("UpdateState", ctx, "req-1", decidable, model.StateRejected).Return(nil)
		repo.On("AppendEvent", ctx, mock.Anything).Return(nil)

		out, err := svc.Decide(ctx, "req-1", Decision{Actor: "reviewer", Approve: false})
		require.NoError(t, err)
		assert.Equal(t, model.StateRejected, out.State)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, err := svc.Decide(ctx, "missing", Decision{Actor: "reviewer", Approve: true})
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("terminal state", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("FindByID", ctx, "req-1").
			Return(&model.ApprovalRequest{ID: "req-1", State: model.StateRejected}, nil)
		repo.On("UpdateState", ctx, "req-1", decidable, model.StateApproved).Return(sql.ErrNoRows)

		_, err := svc.Decide(ctx, "req-1", Decision{Actor: "reviewer", Approve: true})
		assert.ErrorIs(t, err, ErrNotDecidable)
	})
}

func TestStartReview(t *testing.T) {
	ctx := context.Background()
	cfg := config.HITLConfig{AutoApproveBelow: 2, PendingDeadline: 24 * time.Hour}
	claimable := []model.ApprovalState{model.StatePending}

	t.Run("claims pending request", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		notifier := &recordingNotifier{}
		svc := NewApprovalService(repo, cfg, notifier)

		repo.On("FindByID", ctx, "req-1").
			Return(&model.ApprovalRequest{ID: "req-1", TenantID: "tnt-01", State: model.StatePending}, nil)
		repo.On("UpdateState", ctx, "req-1", claimable, model.StateInReview).Return(nil)
		repo.On("AppendEvent", ctx, mock.MatchedBy(func(ev *model.ApprovalEvent) bool {
			return ev.Action == "review_started" && ev.Actor == "reviewer" &&
				ev.FromState == model.StatePending && ev.ToState == model.StateInReview
		})).Return(nil)

		out, err := svc.StartReview(ctx, "req-1", "reviewer")
		require.NoError(t, err)
		assert.Equal(t, model.StateInReview, out.State)
		assert.Equal(t, []string{"review_started"}, notifier.actions)
	})

	t.Run("already claimed", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("FindByID", ctx, "req-1").
			Return(&model.ApprovalRequest{ID: "req-1", State: model.StateInReview}, nil)
		repo.On("UpdateState", ctx, "req-1", claimable, model.StateInReview).Return(sql.ErrNoRows)

		_, err := svc.StartReview(ctx, "req-1", "other-reviewer")
		assert.ErrorIs(t, err, ErrNotDecidable)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("FindByID", ctx, "req-9").Return(nil, sql.ErrNoRows)

		_, err := svc.StartReview(ctx, "req-9", "reviewer")
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})
}

func TestEscalate(t *testing.T) {
	ctx := context.Background()
	cfg := config.HITLConfig{AutoApproveBelow: 2, PendingDeadline: 24 * time.Hour}
	escalatable := []model.ApprovalState{model.StatePending, model.StateInReview}

	t.Run("escalates pending request", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		notifier := &recordingNotifier{}
		svc := NewApprovalService(repo, cfg, notifier)

		repo.On("FindByID", ctx, "req-1").
			Return(&model.ApprovalRequest{ID: "req-1", TenantID: "tnt-01", State: model.StatePending}, nil)
		repo.On("UpdateState", ctx, "req-1", escalatable, model.StateEscalated).Return(nil)
		repo.On("AppendEvent", ctx, mock.MatchedBy(func(ev *model.ApprovalEvent) bool {
			return ev.Action == "escalated" && ev.Note == "needs director sign-off"
		})).Return(nil)

		out, err := svc.Escalate(ctx, "req-1", "reviewer", "needs director sign-off")
		require.NoError(t, err)
		assert.Equal(t, model.StateEscalated, out.State)
		assert.Equal(t, []string{"escalated"}, notifier.actions)
	})

	t.Run("already decided", func(t *testing.T) {
		repo := new(mocks.MockApprovalRepository)
		svc := NewApprovalService(repo, cfg, nil)

		repo.On("FindByID", ctx, "req-1").
			Return(&model.ApprovalRequest{ID: "req-1", State: model.StateApproved}, nil)
		repo.On("UpdateState", ctx, "req-1", escalatable, model.StateEscalated).Return(sql.ErrNoRows)

		_, err := svc.Escalate(ctx, "req-1", "reviewer", "")
		assert.ErrorIs(t, err, ErrNotDecidable)
	})
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	cfg := config.HITLConfig{AutoApproveBelow: 2, PendingDeadline: 24 * time.Hour}

	repo := new(mocks.MockApprovalRepository)
	notifier := &recordingNotifier{}
	svc := &approvalService{repo: repo, cfg: cfg, now: func() time.Time { return now }, notifier: notifier}

	expired := []model.ApprovalRequest{
		{ID: "req-1", TenantID: "tnt-01", State: model.StatePending},
		{ID: "req-2", TenantID: "tnt-01", State: model.StatePending},
	}
	escalatable := []model.ApprovalState{model.StatePending, model.StateInReview}

	repo.On("ListPendingBefore", ctx, now.Add(-24*time.Hour), 100).Return(expired, nil)
	repo.On("UpdateState", ctx, "req-1", escalatable, model.StateEscalated).Return(nil)
	// Raced with a reviewer; the sweep skips it.
	repo.On("UpdateState", ctx, "req-2", escalatable, model.StateEscalated).Return(sql.ErrNoRows)
	repo.On("AppendEvent", ctx, mock.MatchedBy(func(ev *model.ApprovalEvent) bool {
		return ev.RequestID == "req-1" && ev.Action == "expired" && ev.Actor == "system"
	})).Return(nil)

	count, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"expired"}, notifier.actions)
	repo.AssertExpectations(t)
}

func TestApprovalList(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockApprovalRepository)
	svc := NewApprovalService(repo, config.HITLConfig{}, nil)

	repo.On("List", ctx, "tnt-01", model.StatePending, repository.PageQuery{Limit: 20, Offset: 0}).
		Return(&repository.PageResult[model.ApprovalRequest]{
			Items: []model.ApprovalRequest{{ID: "req-1"}},
			Total: 1,
		}, nil)

	out, err := svc.List(ctx, "tnt-01", model.StatePending, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "req-1", out.Items[0].ID)
}
