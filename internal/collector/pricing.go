package collector

// modelPrice is USD per 1M tokens.
type modelPrice struct {
	input  float64
	output float64
}

// modelPricing holds approximate 2025 list prices. Unknown models fall
// back to defaultPrice.
var modelPricing = map[string]modelPrice{
	"gpt-5":             {input: 15.0, output: 60.0},
	"gpt-5-mini":        {input: 2.0, output: 8.0},
	"gpt-4.1":           {input: 10.0, output: 30.0},
	"gpt-4o":            {input: 5.0, output: 15.0},
	"gpt-4o-mini":       {input: 0.15, output: 0.60},
	"claude-opus-4.1":   {input: 15.0, output: 75.0},
	"claude-sonnet-4":   {input: 3.0, output: 15.0},
	"claude-sonnet-3.7": {input: 3.0, output: 15.0},
	"claude-3.5-sonnet": {input: 3.0, output: 15.0},
}

var defaultPrice = modelPrice{input: 1.0, output: 3.0}

// EstimateTokens approximates a token count from raw text: roughly one
// token per four characters.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// EstimateCost converts token counts into an estimated USD cost for the
// given model.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	price, ok := modelPricing[model]
	if !ok {
		price = defaultPrice
	}

	inputCost := float64(inputTokens) / 1_000_000 * price.input
	outputCost := float64(outputTokens) / 1_000_000 * price.output
	return inputCost + outputCost
}
