package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

var (
	ErrInvalidWeight    = errors.New("weight must be positive")
	ErrInvalidDistance  = errors.New("distance must not be negative")
	ErrInvalidMethod    = errors.New("unknown shipping method")
	ErrOrderRefRequired = errors.New("order_ref is required")
	ErrShipmentNotFound = errors.New("shipment not found")
)

// carrierRate is one carrier's pricing for a shipping method.
type carrierRate struct {
	base        float64
	perKg       float64
	perKm       float64
	transitDays int
}

// Static carrier rate card: carrier → method → rates. The minimum-cost
// eligible carrier wins; carriers without a method entry are ineligible.
var carrierRates = map[string]map[model.ShippingMethod]carrierRate{
	"ups": {
		model.MethodStandard:  {base: 5.00, perKg: 0.80, perKm: 0.010, transitDays: 5},
		model.MethodExpress:   {base: 12.00, perKg: 1.20, perKm: 0.015, transitDays: 2},
		model.MethodOvernight: {base: 28.00, perKg: 2.00, perKm: 0.025, transitDays: 1},
	},
	"fedex": {
		model.MethodStandard:  {base: 5.50, perKg: 0.75, perKm: 0.011, transitDays: 4},
		model.MethodExpress:   {base: 11.50, perKg: 1.30, perKm: 0.014, transitDays: 2},
		model.MethodOvernight: {base: 26.00, perKg: 2.20, perKm: 0.024, transitDays: 1},
	},
	"usps": {
		model.MethodStandard: {base: 4.00, perKg: 0.95, perKm: 0.012, transitDays: 6},
		model.MethodExpress:  {base: 10.00, perKg: 1.50, perKm: 0.016, transitDays: 3},
	},
	"dhl": {
		model.MethodExpress:   {base: 13.00, perKg: 1.10, perKm: 0.013, transitDays: 2},
		model.MethodOvernight: {base: 30.00, perKg: 1.90, perKm: 0.026, transitDays: 1},
	},
}

// Static region → warehouse assignment.
var warehouseByRegion = map[string]string{
	"us-east": "WH-NYC-01",
	"us-west": "WH-LAX-02",
	"us-mid":  "WH-CHI-03",
	"eu":      "WH-AMS-04",
	"apac":    "WH-SIN-05",
}

const defaultWarehouse = "WH-NYC-01"

// QuoteInput describes a fulfillment quote request.
type QuoteInput struct {
	Method     model.ShippingMethod
	WeightKg   float64
	DistanceKm float64
	Region     string
}

// QuoteResult carries all carrier quotes plus the selected minimum-cost one.
type QuoteResult struct {
	Quotes    []model.CarrierQuote `json:"quotes"`
	Selected  model.CarrierQuote   `json:"selected"`
	Warehouse string               `json:"warehouse"`
}

// ShipmentInput creates a shipment from a quote-shaped request.
type ShipmentInput struct {
	TenantID   string
	OrderRef   string
	Method     model.ShippingMethod
	WeightKg   float64
	DistanceKm float64
	Region     string
}

// ShipmentListResult is the service-level DTO for paginated shipments.
type ShipmentListResult struct {
	Items []model.Shipment `json:"data"`
	Total int              `json:"total"`
}

// FulfillmentService defines carrier selection and shipment lifecycle use cases.
type FulfillmentService interface {
	// Quote computes per-carrier costs and picks the cheapest eligible carrier.
	Quote(in QuoteInput) (*QuoteResult, error)

	// CreateShipment quotes and persists a shipment with the selected carrier.
	CreateShipment(ctx context.Context, in ShipmentInput) (*model.Shipment, error)

	Get(ctx context.Context, id string) (*model.Shipment, error)
	List(ctx context.Context, tenantID string, limit, offset int) (*ShipmentListResult, error)

	// AdvanceActive moves every undelivered shipment one lifecycle step
	// forward. Called by the background poller; returns shipments advanced.
	AdvanceActive(ctx context.Context) (int, error)
}

type fulfillmentService struct {
	repo repository.ShipmentRepository
}

// NewFulfillmentService constructs the fulfillment manager.
func NewFulfillmentService(repo repository.ShipmentRepository) FulfillmentService {
	return &fulfillmentService{repo: repo}
}

func (s *fulfillmentService) Quote(in QuoteInput) (*QuoteResult, error) {
	if in.WeightKg <= 0 {
		return nil, ErrInvalidWeight
	}
	if in.DistanceKm < 0 {
		return nil, ErrInvalidDistance
	}
	method := normalizeMethod(in.Method)
	if method == "" {
		return nil, ErrInvalidMethod
	}

	quotes := make([]model.CarrierQuote, 0, len(carrierRates))
	for carrier, methods := range carrierRates {
		rate, ok := methods[method]
		if !ok {
			continue
		}
		cost := rate.base + rate.perKg*in.WeightKg + rate.perKm*in.DistanceKm
		quotes = append(quotes, model.CarrierQuote{
			Carrier:     carrier,
			Cost:        round2(cost),
			TransitDays: rate.transitDays,
		})
	}
	if len(quotes) == 0 {
		return nil, ErrInvalidMethod
	}

	// Cheapest first; carrier name breaks ties deterministically.
	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].Cost != quotes[j].Cost {
			return quotes[i].Cost < quotes[j].Cost
		}
		return quotes[i].Carrier < quotes[j].Carrier
	})

	warehouse := warehouseByRegion[strings.ToLower(in.Region)]
	if warehouse == "" {
		warehouse = defaultWarehouse
	}

	return &QuoteResult{Quotes: quotes, Selected: quotes[0], Warehouse: warehouse}, nil
}

func (s *fulfillmentService) CreateShipment(ctx context.Context, in ShipmentInput) (*model.Shipment, error) {
	if strings.TrimSpace(in.OrderRef) == "" {
		return nil, ErrOrderRefRequired
	}
	quote, err := s.Quote(QuoteInput{
		Method:     in.Method,
		WeightKg:   in.WeightKg,
		DistanceKm: in.DistanceKm,
		Region:     in.Region,
	})
	if err != nil {
		return nil, err
	}

	shipment := &model.Shipment{
		TenantID:    in.TenantID,
		OrderRef:    in.OrderRef,
		Carrier:     quote.Selected.Carrier,
		Warehouse:   quote.Warehouse,
		Method:      normalizeMethod(in.Method),
		WeightKg:    in.WeightKg,
		DistanceKm:  in.DistanceKm,
		Cost:        quote.Selected.Cost,
		Status:      model.ShipmentCreated,
		TransitDays: quote.Selected.TransitDays,
	}
	stored, err := s.repo.Create(ctx, shipment)
	if err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}
	return stored, nil
}

func (s *fulfillmentService) Get(ctx context.Context, id string) (*model.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	return shipment, nil
}

func (s *fulfillmentService) List(ctx context.Context, tenantID string, limit, offset int) (*ShipmentListResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, tenantID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ShipmentListResult{Items: res.Items, Total: res.Total}, nil
}

// nextStatus is the shipment lifecycle transition table.
var nextStatus = map[model.ShipmentStatus]model.ShipmentStatus{
	model.ShipmentCreated:   model.ShipmentPicked,
	model.ShipmentPicked:    model.ShipmentInTransit,
	model.ShipmentInTransit: model.ShipmentDelivered,
}

func (s *fulfillmentService) AdvanceActive(ctx context.Context) (int, error) {
	active, err := s.repo.ListActive(ctx, 100)
	if err != nil {
		return 0, err
	}

	advanced := 0
	for _, shipment := range active {
		next, ok := nextStatus[shipment.Status]
		if !ok {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, shipment.ID, next); err != nil {
			continue
		}
		advanced++
	}
	return advanced, nil
}

func normalizeMethod(m model.ShippingMethod) model.ShippingMethod {
	switch model.ShippingMethod(strings.ToLower(string(m))) {
	case model.MethodStandard:
		return model.MethodStandard
	case model.MethodExpress:
		return model.MethodExpress
	case model.MethodOvernight:
		return model.MethodOvernight
	default:
		return ""
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
