package costs

// ModelPricing holds a model's USD rates per million tokens.
type ModelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one request at these rates.
func (p ModelPricing) Cost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)*p.InputPerMTok/1e6 +
		float64(completionTokens)*p.OutputPerMTok/1e6
}

// defaultPricing covers the models commonly pointed at this tool. Rates
// drift; unknown models fall back to zero so self-hosted endpoints are not
// billed phantom costs.
var defaultPricing = map[string]ModelPricing{
	"gpt-4o":            {InputPerMTok: 2.50, OutputPerMTok: 10.00},
	"gpt-4o-mini":       {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4.1":           {InputPerMTok: 2.00, OutputPerMTok: 8.00},
	"gpt-4.1-mini":      {InputPerMTok: 0.40, OutputPerMTok: 1.60},
	"deepseek-chat":     {InputPerMTok: 0.27, OutputPerMTok: 1.10},
	"deepseek-reasoner": {InputPerMTok: 0.55, OutputPerMTok: 2.19},
}

// PricingFor returns the rates for model, or zero rates when the model is
// unknown (local or self-hosted back-ends skip cost metering this way).
func PricingFor(model string) ModelPricing {
	return defaultPricing[model]
}
