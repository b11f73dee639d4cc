package dcf

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ParsePayload turns the raw text of the upstream analysis step into a
// ScenarioPayload. LLM output is JSON-shaped but unreliable, so parsing is a
// ladder of increasingly lenient strategies:
//
//  1. strict encoding/json
//  2. json-repair (unquoted keys, trailing commas, markdown fences, ...)
//  3. hjson (most lenient)
//
// Parsing only restores syntax; the numeric contract is still enforced by
// ValidatePayload before the payload reaches the engine.
func ParsePayload(raw string) (*ScenarioPayload, error) {
	cleaned := stripCodeFence(raw)

	var payload ScenarioPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		return &payload, nil
	}

	if repaired, err := jsonrepair.RepairJSON(cleaned); err == nil {
		payload = ScenarioPayload{}
		if err := json.Unmarshal([]byte(repaired), &payload); err == nil {
			fmt.Printf("[DCF] Scenario payload required JSON repair\n")
			return &payload, nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(cleaned), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			payload = ScenarioPayload{}
			if err := json.Unmarshal(normalized, &payload); err == nil {
				fmt.Printf("[DCF] Scenario payload parsed via hjson fallback\n")
				return &payload, nil
			}
		}
	}

	return nil, fmt.Errorf("scenario payload is not parseable as JSON")
}

// stripCodeFence removes a wrapping markdown code block if present.
func stripCodeFence(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```json")
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}
