// Package graphqlmock serves hand-assembled GraphQL responses for frontend
// and integration testing. It is a fixture, not a query engine: introspection
// plus two canned queries, everything else gets a GraphQL errors array.
package graphqlmock

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

// request is the standard GraphQL POST body.
type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Fixture data returned by the canned queries.
var campaignFixtures = []model.Campaign{
	{ID: "cmp-1001", Name: "Summer Sale Push", Channel: "facebook", Status: "ACTIVE", Objective: "CONVERSIONS"},
	{ID: "cmp-1002", Name: "Brand Awareness Q3", Channel: "amazon-ads", Status: "ACTIVE", Objective: "AWARENESS"},
	{ID: "cmp-1003", Name: "Holiday Retargeting", Channel: "facebook", Status: "PAUSED", Objective: "TRAFFIC"},
}

var tenantFixtures = []map[string]any{
	{"id": "tnt-01", "name": "Acme Retail", "plan": "growth"},
	{"id": "tnt-02", "name": "Globex Media", "plan": "enterprise"},
}

// Handler returns the fiber handler for POST /graphql.
func Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorsPayload("invalid GraphQL request body"))
		}

		switch {
		case strings.Contains(req.Query, "__schema"):
			return c.JSON(introspectionResponse)
		case strings.Contains(req.Query, "campaigns"):
			return c.JSON(fiber.Map{"data": fiber.Map{"campaigns": campaignFixtures}})
		case strings.Contains(req.Query, "tenants"):
			return c.JSON(fiber.Map{"data": fiber.Map{"tenants": tenantFixtures}})
		default:
			return c.JSON(errorsPayload("unsupported query; mock server answers campaigns, tenants and introspection only"))
		}
	}
}

func errorsPayload(msg string) fiber.Map {
	return fiber.Map{"errors": []fiber.Map{{"message": msg}}}
}

// introspectionResponse is a minimal hand-built __schema answer covering the
// two canned queries, enough for GraphQL clients to boot.
var introspectionResponse = fiber.Map{
	"data": fiber.Map{
		"__schema": fiber.Map{
			"queryType": fiber.Map{"name": "Query"},
			"types": []fiber.Map{
				{
					"kind": "OBJECT",
					"name": "Query",
					"fields": []fiber.Map{
						{"name": "campaigns", "type": fiber.Map{"kind": "LIST", "name": nil, "ofType": fiber.Map{"kind": "OBJECT", "name": "Campaign"}}},
						{"name": "tenants", "type": fiber.Map{"kind": "LIST", "name": nil, "ofType": fiber.Map{"kind": "OBJECT", "name": "Tenant"}}},
					},
				},
				{
					"kind": "OBJECT",
					"name": "Campaign",
					"fields": []fiber.Map{
						{"name": "id", "type": fiber.Map{"kind": "SCALAR", "name": "ID"}},
						{"name": "name", "type": fiber.Map{"kind": "SCALAR", "name": "String"}},
						{"name": "channel", "type": fiber.Map{"kind": "SCALAR", "name": "String"}},
						{"name": "status", "type": fiber.Map{"kind": "SCALAR", "name": "String"}},
						{"name": "objective", "type": fiber.Map{"kind": "SCALAR", "name": "String"}},
					},
				},
				{
					"kind": "OBJECT",
					"name": "Tenant",
					"fields": []fiber.Map{
						{"name": "id", "type": fiber.Map{"kind": "SCALAR", "name": "ID"}},
						{"name": "name", "type": fiber.Map{"kind": "SCALAR", "name": "String"}},
						{"name": "plan", "type": fiber.Map{"kind": "SCALAR", "name": "String"}},
					},
				},
				{"kind": "SCALAR", "name": "ID"},
				{"kind": "SCALAR", "name": "String"},
			},
		},
	},
}
