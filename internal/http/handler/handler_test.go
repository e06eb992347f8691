package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/collab"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/http/middleware"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
	serviceMocks "github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service/mocks"
)

// fakeConnector is a stub vendor module for dispatch tests.
type fakeConnector struct {
	vendor string
	result map[string]any
	err    error
}

func (f *fakeConnector) Vendor() string        { return f.vendor }
func (f *fakeConnector) Operations() []string  { return []string{"list_campaigns"} }
func (f *fakeConnector) Execute(_ context.Context, _, op string, _ map[string]any) (map[string]any, error) {
	if op != "list_campaigns" {
		return nil, integration.ErrUnknownOperation
	}
	return f.result, f.err
}

// fakeOAuth is a stub authorization-code flow.
type fakeOAuth struct {
	url  string
	conn *model.IntegrationConnection
	err  error
}

func (f *fakeOAuth) AuthorizeURL(vendor, state string) (string, error) { return f.url, f.err }
func (f *fakeOAuth) Exchange(_ context.Context, _, _, _ string) (*model.IntegrationConnection, error) {
	return f.conn, f.err
}
func (f *fakeOAuth) Status(_ context.Context, _, _ string) (*model.IntegrationConnection, error) {
	return f.conn, f.err
}

type testDeps struct {
	deps     Deps
	approval *serviceMocks.MockApprovalService
	fulfill  *serviceMocks.MockFulfillmentService
	assets   *serviceMocks.MockAssetService
	insights *serviceMocks.MockInsightService
	dbMock   sqlmock.Sqlmock
}

func newTestApp(t *testing.T, mutate func(*testDeps)) (*fiber.App, *testDeps) {
	t.Helper()

	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry := integration.NewRegistry()
	registry.Register(&fakeConnector{
		vendor: "facebook-ads",
		result: map[string]any{"count": float64(1)},
	})

	td := &testDeps{
		approval: new(serviceMocks.MockApprovalService),
		fulfill:  new(serviceMocks.MockFulfillmentService),
		assets:   new(serviceMocks.MockAssetService),
		insights: new(serviceMocks.MockInsightService),
		dbMock:   dbMock,
	}
	td.deps = Deps{
		DB:          db,
		Registry:    registry,
		OAuth:       &fakeOAuth{url: "https://vendor.example/authorize"},
		Approvals:   td.approval,
		Fulfillment: td.fulfill,
		Assets:      td.assets,
		Insights:    td.insights,
		Hub:         collab.NewHub(nil),
	}
	if mutate != nil {
		mutate(td)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	app.Use(middleware.Tenant("tnt-01"))
	RegisterRoutes(app, td.deps)
	return app, td
}

func TestHealth(t *testing.T) {
	app, td := newTestApp(t, nil)

	t.Run("healthy", func(t *testing.T) {
		td.dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("db down", func(t *testing.T) {
		td.dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListIntegrations(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/brain/integrations/", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Vendors []struct {
			Vendor     string   `json:"vendor"`
			Operations []string `json:"operations"`
		} `json:"vendors"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	require.Len(t, body.Vendors, 1)
	assert.Equal(t, "facebook-ads", body.Vendors[0].Vendor)
	assert.Equal(t, []string{"list_campaigns"}, body.Vendors[0].Operations)
}

func TestDispatchOperation(t *testing.T) {
	t.Run("success with analysis", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		td.insights.On("Analyze", mock.Anything, "facebook-ads", "list_campaigns", mock.Anything).
			Return(map[string]any{"summary": "looks healthy"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/integrations/facebook-ads/list_campaigns", bytes.NewBufferString(`{"params":{"account_id":"123"}}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "facebook-ads", body["vendor"])
		assert.Equal(t, "list_campaigns", body["operation"])
		assert.Equal(t, map[string]any{"count": float64(1)}, body["business_result"])
		assert.Equal(t, map[string]any{"summary": "looks healthy"}, body["agent_analysis"])
		td.insights.AssertExpectations(t)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		app, _ := newTestApp(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/brain/integrations/nope/list_campaigns", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "UNKNOWN_VENDOR", body.Error.Code)
	})

	t.Run("unknown operation", func(t *testing.T) {
		app, _ := newTestApp(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/brain/integrations/facebook-ads/nope", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "UNKNOWN_OPERATION", body.Error.Code)
	})

	t.Run("not connected", func(t *testing.T) {
		app, _ := newTestApp(t, func(td *testDeps) {
			registry := integration.NewRegistry()
			registry.Register(&fakeConnector{vendor: "facebook-ads", err: integration.ErrNotConnected})
			td.deps.Registry = registry
		})

		req := httptest.NewRequest(http.MethodPost, "/api/brain/integrations/facebook-ads/list_campaigns", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_CONNECTED", body.Error.Code)
	})

	t.Run("missing parameter maps to 400", func(t *testing.T) {
		app, _ := newTestApp(t, func(td *testDeps) {
			registry := integration.NewRegistry()
			registry.Register(&fakeConnector{vendor: "facebook-ads", err: integration.MissingParam("account_id")})
			td.deps.Registry = registry
		})

		req := httptest.NewRequest(http.MethodPost, "/api/brain/integrations/facebook-ads/list_campaigns", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "account_id")
	})

	t.Run("retryable vendor failure maps to 502", func(t *testing.T) {
		app, _ := newTestApp(t, func(td *testDeps) {
			registry := integration.NewRegistry()
			registry.Register(&fakeConnector{vendor: "facebook-ads", err: &integration.VendorError{
				Vendor: "facebook-ads", Operation: "list_campaigns", StatusCode: 503, Retryable: true,
			}})
			td.deps.Registry = registry
		})

		req := httptest.NewRequest(http.MethodPost, "/api/brain/integrations/facebook-ads/list_campaigns", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VENDOR_UNAVAILABLE", body.Error.Code)
	})

	t.Run("fatal vendor failure maps to 422", func(t *testing.T) {
		app, _ := newTestApp(t, func(td *testDeps) {
			registry := integration.NewRegistry()
			registry.Register(&fakeConnector{vendor: "facebook-ads", err: &integration.VendorError{
				Vendor: "facebook-ads", Operation: "list_campaigns", StatusCode: 400,
			}})
			td.deps.Registry = registry
		})

		req := httptest.NewRequest(http.MethodPost, "/api/brain/integrations/facebook-ads/list_campaigns", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VENDOR_REJECTED", body.Error.Code)
	})
}

func TestOAuthStart(t *testing.T) {
	app, _ := newTestApp(t, nil)

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brain/integrations/facebook-ads/oauth/start?state=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "https://vendor.example/authorize", body["authorize_url"])
	})

	t.Run("missing state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brain/integrations/facebook-ads/oauth/start", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "STATE_REQUIRED", body.Error.Code)
	})
}

func TestConnectionStatus(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		app, _ := newTestApp(t, func(td *testDeps) {
			td.deps.OAuth = &fakeOAuth{conn: &model.IntegrationConnection{
				Vendor: "facebook-ads",
				Status: model.ConnectionActive,
			}}
		})

		req := httptest.NewRequest(http.MethodGet, "/api/brain/integrations/facebook-ads/status", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "active", body["status"])
	})

	t.Run("not connected reports disconnected", func(t *testing.T) {
		app, _ := newTestApp(t, func(td *testDeps) {
			td.deps.OAuth = &fakeOAuth{err: integration.ErrNotConnected}
		})

		req := httptest.NewRequest(http.MethodGet, "/api/brain/integrations/facebook-ads/status", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "disconnected", body["status"])
	})
}

func TestSubmitApproval(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		expected := &model.ApprovalRequest{
			ID:        uuid.New().String(),
			TenantID:  "tnt-01",
			State:     model.StatePending,
			RiskLevel: model.RiskMedium,
		}
		td.approval.On("Submit", mock.Anything, mock.MatchedBy(func(in service.SubmitInput) bool {
			return in.TenantID == "tnt-01" && in.Title == "Summer promo"
		})).Return(expected, nil).Once()

		payload := `{"kind":"content_marketing","title":"Summer promo","body":"Money back guarantee on all orders"}`
		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/requests", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.ApprovalRequest
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		td.approval.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		td.approval.On("Submit", mock.Anything, mock.Anything).Return(nil, service.ErrTitleRequired).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/requests", bytes.NewBufferString(`{"body":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})
}

func TestStartReviewRoute(t *testing.T) {
	t.Run("claims pending request", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		id := uuid.New().String()
		td.approval.On("StartReview", mock.Anything, id, "reviewer").
			Return(&model.ApprovalRequest{ID: id, State: model.StateInReview}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/requests/"+id+"/review", bytes.NewBufferString(`{"actor":"reviewer"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.ApprovalRequest
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.StateInReview, result.State)
		td.approval.AssertExpectations(t)
	})

	t.Run("already claimed conflicts", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		id := uuid.New().String()
		td.approval.On("StartReview", mock.Anything, id, "other").
			Return(nil, service.ErrNotDecidable).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/requests/"+id+"/review", bytes.NewBufferString(`{"actor":"other"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_DECIDABLE", body.Error.Code)
	})
}

func TestDecideApproval(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		id := uuid.New().String()
		td.approval.On("Decide", mock.Anything, id, service.Decision{Actor: "reviewer", Approve: true}).
			Return(&model.ApprovalRequest{ID: id, State: model.StateApproved}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/requests/"+id+"/decision", bytes.NewBufferString(`{"decision":"approve","actor":"reviewer"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		td.approval.AssertExpectations(t)
	})

	t.Run("invalid decision", func(t *testing.T) {
		app, _ := newTestApp(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/requests/x/decision", bytes.NewBufferString(`{"decision":"maybe"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_DECISION", body.Error.Code)
	})

	t.Run("terminal state conflicts", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		id := uuid.New().String()
		td.approval.On("Decide", mock.Anything, id, mock.Anything).Return(nil, service.ErrNotDecidable).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/requests/"+id+"/decision", bytes.NewBufferString(`{"decision":"reject"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_DECIDABLE", body.Error.Code)
	})
}

func TestUploadAsset(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "banner.png")
		part.Write([]byte("png bytes"))
		writer.Close()

		expected := &model.ContentAsset{ID: uuid.New().String(), Filename: "banner.png"}
		td.assets.On("Upload", mock.Anything, "tnt-01", mock.Anything, "banner.png", mock.Anything, mock.Anything).
			Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/assets", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		td.assets.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		app, _ := newTestApp(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/brain/hitl/assets", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})
}

func TestFulfillmentQuote(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		td.fulfill.On("Quote", service.QuoteInput{
			Method: model.MethodExpress, WeightKg: 2, DistanceKm: 100, Region: "us-east",
		}).Return(&service.QuoteResult{
			Selected:  model.CarrierQuote{Carrier: "usps", Cost: 14.6, TransitDays: 3},
			Warehouse: "WH-NYC-01",
		}, nil).Once()

		payload := `{"method":"express","weight_kg":2,"distance_km":100,"region":"us-east"}`
		req := httptest.NewRequest(http.MethodPost, "/api/brain/fulfillment/quote", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.QuoteResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "usps", result.Selected.Carrier)
		td.fulfill.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		td.fulfill.On("Quote", mock.Anything).Return(nil, service.ErrInvalidWeight).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/brain/fulfillment/quote", bytes.NewBufferString(`{"method":"express"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})
}

func TestGetShipment(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		app, td := newTestApp(t, nil)
		id := uuid.New().String()
		td.fulfill.On("Get", mock.Anything, id).Return(nil, service.ErrShipmentNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/brain/fulfillment/shipments/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		td.fulfill.AssertExpectations(t)
	})
}

func TestPresence(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/brain/collab/presence", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "tnt-01", body["tenant_id"])
	assert.Equal(t, float64(0), body["sessions"])
}

func TestGraphQLMock(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query":"{ campaigns { id name } }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Campaigns []model.Campaign `json:"campaigns"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Len(t, body.Data.Campaigns, 3)
}

func TestRouting(t *testing.T) {
	app, _ := newTestApp(t, nil)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPut, "/health", nil)
		resp, _ := app.Test(req)

		// Fiber returns 405 by default if route exists but method doesn't match
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
