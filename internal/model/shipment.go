package model

import "time"

// ShippingMethod selects the service level used when quoting carriers.
type ShippingMethod string

const (
	MethodStandard  ShippingMethod = "standard"
	MethodExpress   ShippingMethod = "express"
	MethodOvernight ShippingMethod = "overnight"
)

// ShipmentStatus is the delivery lifecycle of a shipment, advanced by the
// background status poller.
type ShipmentStatus string

const (
	ShipmentCreated   ShipmentStatus = "created"
	ShipmentPicked    ShipmentStatus = "picked"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
)

// Shipment is a persisted fulfillment order with its selected carrier and cost.
type Shipment struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	OrderRef    string         `json:"order_ref"`
	Carrier     string         `json:"carrier"`
	Warehouse   string         `json:"warehouse"`
	Method      ShippingMethod `json:"method"`
	WeightKg    float64        `json:"weight_kg"`
	DistanceKm  float64        `json:"distance_km"`
	Cost        float64        `json:"cost"`
	Status      ShipmentStatus `json:"status"`
	TransitDays int            `json:"transit_days"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CarrierQuote is one carrier's computed price for a quote request.
type CarrierQuote struct {
	Carrier     string  `json:"carrier"`
	Cost        float64 `json:"cost"`
	TransitDays int     `json:"transit_days"`
}
