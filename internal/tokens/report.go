package tokens

import "github.com/common-creation/tokencounter/internal/models"

// PerModelCost is the token usage and estimated price for one model.
type PerModelCost struct {
	PromptTokens     int     `json:"prompt_tokens"`
	ResponseTokens   int     `json:"response_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// CostReport is the result of a token_counter call.
type CostReport struct {
	PromptTokens   int                        `json:"prompt_tokens"`
	ResponseTokens int                        `json:"response_tokens"`
	TotalTokens    int                        `json:"total_tokens"`
	DefaultModel   models.ID                  `json:"default_model"`
	Costs          map[models.ID]PerModelCost `json:"costs"`
}

// Request is the argument shape of the token_counter tool.
type Request struct {
	PromptText   string `json:"prompt_text" jsonschema:"the prompt to count"`
	ResponseText string `json:"response_text,omitempty" jsonschema:"an optional model response to count"`
	Model        string `json:"model,omitempty" jsonschema:"model used for tokenization: gpt-4o-mini, gpt-4o or gpt-4.1-mini"`
}

// Clone returns a deep copy of r. A nil receiver yields nil.
func (r *CostReport) Clone() *CostReport {
	if r == nil {
		return nil
	}
	out := *r
	if r.Costs != nil {
		out.Costs = make(map[models.ID]PerModelCost, len(r.Costs))
		for k, v := range r.Costs {
			out.Costs[k] = v
		}
	}
	return &out
}
