package classify

import (
	"context"
	"encoding/json"
	"strings"
)

// Waste categories the system credits. Anything else maps to unknown.
var Categories = []string{"plastic", "metal", "glass", "paper", "wood"}

// CreditValues assigns per-category credit rewards. Unknown items earn
// nothing.
var CreditValues = map[string]int{
	"plastic": 10,
	"metal":   40,
	"glass":   20,
	"wood":    15,
	"paper":   5,
	"unknown": 0,
}

// Result is one classification outcome.
type Result struct {
	Category     string `json:"category"`
	SpecificItem string `json:"specific_item"`
	CreditsValue int    `json:"credits_value"`
}

// Unknown builds the degraded result used whenever the upstream model is
// unreachable or unusable. Callers never fail a request over it.
func Unknown(item string) Result {
	return Result{Category: "unknown", SpecificItem: item, CreditsValue: 0}
}

// Classifier identifies the waste item in a JPEG image. Implementations
// call a remote multimodal model and may fail; callers substitute
// Unknown() instead of surfacing the error to end users.
type Classifier interface {
	ClassifyImage(ctx context.Context, jpeg []byte) (Result, error)
}

// CreditsFor looks up the reward for a category.
func CreditsFor(category string) int {
	return CreditValues[category]
}

// modelResponse is the JSON shape the model is prompted to return.
type modelResponse struct {
	Category string `json:"category"`
	ItemName string `json:"item_name"`
}

// ParseModelResponse extracts (category, item name) from the model's text
// reply. Replies usually arrive as JSON, often wrapped in a ```json fence.
// On parse failure it falls back to keyword mapping over the raw text.
func ParseModelResponse(text string) (string, string) {
	clean := strings.TrimSpace(text)
	if strings.HasPrefix(clean, "```json") && strings.HasSuffix(clean, "```") {
		clean = strings.TrimSpace(clean[len("```json") : len(clean)-len("```")])
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return MapDescriptionToCategory(text), "unknown_item_parsing_error"
	}

	category := strings.ToLower(parsed.Category)
	if _, ok := CreditValues[category]; !ok {
		category = "unknown"
	}
	item := strings.ToLower(parsed.ItemName)
	if item == "" {
		item = "unknown"
	}
	return category, item
}

var categoryKeywords = map[string][]string{
	"plastic": {"plastic", "bottle", "container", "bag"},
	"metal":   {"metal", "can", "aluminum", "steel"},
	"glass":   {"glass", "jar", "bottle"},
	"paper":   {"paper", "cardboard", "sheet", "newspaper"},
	"wood":    {"wood", "stick", "timber", "plywood"},
}

// keyword order matters: "bottle" counts as plastic before glass, matching
// the credit table's benefit of the doubt.
var keywordOrder = []string{"plastic", "metal", "glass", "paper", "wood"}

// MapDescriptionToCategory scans a free-text description for category
// keywords. Returns "unknown" when nothing matches.
func MapDescriptionToCategory(description string) string {
	desc := strings.ToLower(description)
	for _, category := range keywordOrder {
		for _, word := range categoryKeywords[category] {
			if strings.Contains(desc, word) {
				return category
			}
		}
	}
	return "unknown"
}
