package llm

import "strings"

// price is USD per million tokens.
type price struct {
	input  float64
	output float64
}

// prices covers the models the aliases resolve to plus common OpenRouter
// ids. Dated snapshots match by prefix.
var prices = map[string]price{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4-1":   {15, 75},
	"gpt-4o":            {2.5, 10},
	"gpt-4o-mini":       {0.15, 0.6},
	"gpt-4.1-mini":      {0.4, 1.6},
	"gpt-5-mini":        {0.25, 2},
	"gemini-2.0-flash":  {0.1, 0.4},
	"gemini-2.5-flash":  {0.3, 2.5},
	"gemini-2.5-pro":    {1.25, 10},
}

// EstimateCost returns the USD cost of usage on model. It reports false
// for unknown models.
func EstimateCost(model string, u Usage) (float64, bool) {
	model = model[strings.LastIndex(model, "/")+1:]
	p, ok := prices[model]
	if !ok {
		best := ""
		for id := range prices {
			if strings.HasPrefix(model, id) && len(id) > len(best) {
				best = id
			}
		}
		if best == "" {
			return 0, false
		}
		p = prices[best]
	}
	return (float64(u.InputTokens)*p.input + float64(u.OutputTokens)*p.output) / 1_000_000, true
}
