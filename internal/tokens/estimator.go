package tokens

import (
	"context"
	"fmt"
	"math"

	"github.com/common-creation/tokencounter/internal/models"
)

// EstimateError reports a request the estimator refused to process
type EstimateError struct {
	Message string
	Cause   error
}

// NewEstimateError creates a new EstimateError
func NewEstimateError(message string, cause error) *EstimateError {
	return &EstimateError{Message: message, Cause: cause}
}

// Error implements the error interface
func (e *EstimateError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *EstimateError) Unwrap() error {
	return e.Cause
}

// Estimator turns a Request into a CostReport.
type Estimator struct {
	counter Counter
}

// NewEstimator creates an estimator. A nil counter selects a TiktokenCounter.
func NewEstimator(counter Counter) *Estimator {
	if counter == nil {
		counter = NewTiktokenCounter()
	}
	return &Estimator{counter: counter}
}

// Estimate counts the prompt and response with the requested model and prices
// the result on every supported model. Both texts are tokenized once; the
// per-model entries differ only in price.
func (e *Estimator) Estimate(ctx context.Context, req Request) (CostReport, error) {
	if err := ctx.Err(); err != nil {
		return CostReport{}, err
	}

	model := models.Normalize(models.ID(req.Model))

	promptTokens, err := e.counter.Count(req.PromptText, model)
	if err != nil {
		return CostReport{}, NewEstimateError("failed to count prompt tokens", err)
	}
	responseTokens, err := e.counter.Count(req.ResponseText, model)
	if err != nil {
		return CostReport{}, NewEstimateError("failed to count response tokens", err)
	}
	total := promptTokens + responseTokens

	costs := make(map[models.ID]PerModelCost, len(models.Supported))
	for _, m := range models.Supported {
		costs[m] = PerModelCost{
			PromptTokens:     promptTokens,
			ResponseTokens:   responseTokens,
			TotalTokens:      total,
			EstimatedCostUSD: EstimateCost(promptTokens, responseTokens, m),
		}
	}

	return CostReport{
		PromptTokens:   promptTokens,
		ResponseTokens: responseTokens,
		TotalTokens:    total,
		DefaultModel:   model,
		Costs:          costs,
	}, nil
}

// EstimateCost prices tokensIn/tokensOut on model in USD, rounded to six
// decimals. Unknown models use the fallback price.
func EstimateCost(tokensIn, tokensOut int, model models.ID) float64 {
	price := models.PriceFor(model)
	in := float64(tokensIn) / 1_000_000 * price.Input
	out := float64(tokensOut) / 1_000_000 * price.Output
	return math.Round((in+out)*1e6) / 1e6
}

// Summary is the one-line text description of a report
func Summary(r CostReport) string {
	return fmt.Sprintf("Prompt has %d tokens and response %d. Total: %d.",
		r.PromptTokens, r.ResponseTokens, r.TotalTokens)
}
