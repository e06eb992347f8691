package model

// Campaign is an advertising campaign as returned by the ads vendors and by
// the mock GraphQL fixture data.
type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	Objective string `json:"objective,omitempty"`
}

// CampaignInsight carries performance metrics for one campaign. String-typed
// counters mirror how the ads APIs deliver them.
type CampaignInsight struct {
	CampaignID  string  `json:"campaign_id"`
	Clicks      string  `json:"clicks"`
	Impressions string  `json:"impressions"`
	Reach       string  `json:"reach"`
	Spend       float64 `json:"spend"`
	CPC         float64 `json:"cpc,omitempty"`
}
