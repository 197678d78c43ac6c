package models

import "strings"

const (
	PresetFactual  = "FACTUAL"
	PresetBalanced = "BALANCED"
	PresetCreative = "CREATIVE"
	PresetConcise  = "CONCISE"

	DefaultPreset = PresetBalanced
)

type Params struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	MaxTokens   int     `json:"maxTokens"`
}

var presets = map[string]Params{
	PresetFactual:  {Temperature: 0.2, TopP: 0.85, MaxTokens: 512},
	PresetBalanced: {Temperature: 0.3, TopP: 0.90, MaxTokens: 512},
	PresetCreative: {Temperature: 0.7, TopP: 0.95, MaxTokens: 768},
	PresetConcise:  {Temperature: 0.2, TopP: 0.85, MaxTokens: 256},
}

// ResolvePreset returns the canonical preset name and its parameters.
// Unknown names resolve to BALANCED.
func ResolvePreset(name string) (string, Params) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if p, ok := presets[key]; ok {
		return key, p
	}
	return DefaultPreset, presets[DefaultPreset]
}

func IsPreset(name string) bool {
	_, ok := presets[strings.ToUpper(name)]
	return ok
}
