// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// API CONFIGURATION
// =============================================================================

// Parameter bounds. Values outside these ranges are clamped, not rejected,
// so an imported or hand-edited preset still loads.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 1
	MaxMaxTokens   = 8000
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinPenalty     = -2.0
	MaxPenalty     = 2.0
)

// APIConfig is the generation configuration for a session. One active
// instance per session; presets are named snapshots of this struct.
type APIConfig struct {
	ModelName string `json:"model_name"`
	BaseURL   string `json:"base_url"`
	APIKey    string `json:"api_key"`

	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`

	// CustomParams merge into the request body after the standard
	// fields; a custom key may override any standard one.
	CustomParams map[string]any `json:"custom_parameters,omitempty"`
}

// DefaultAPIConfig returns a config with the usual sampling defaults.
// Model, URL and key stay empty until the user fills them in.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Temperature: 0.7,
		MaxTokens:   2048,
		TopP:        1.0,
	}
}

// Clamp forces every numeric parameter into its valid range.
func (c *APIConfig) Clamp() {
	c.Temperature = clampFloat(c.Temperature, MinTemperature, MaxTemperature)
	c.TopP = clampFloat(c.TopP, MinTopP, MaxTopP)
	c.FrequencyPenalty = clampFloat(c.FrequencyPenalty, MinPenalty, MaxPenalty)
	c.PresencePenalty = clampFloat(c.PresencePenalty, MinPenalty, MaxPenalty)

	if c.MaxTokens < MinMaxTokens {
		c.MaxTokens = MinMaxTokens
	}
	if c.MaxTokens > MaxMaxTokens {
		c.MaxTokens = MaxMaxTokens
	}
}

// Clone returns a deep copy, including custom parameters.
func (c APIConfig) Clone() APIConfig {
	clone := c
	if c.CustomParams != nil {
		clone.CustomParams = make(map[string]any, len(c.CustomParams))
		for k, v := range c.CustomParams {
			clone.CustomParams[k] = v
		}
	}
	return clone
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// PRESETS
// =============================================================================

// Preset is a named snapshot of an APIConfig.
type Preset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Config    APIConfig `json:"config"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPreset snapshots the given config under a name.
func NewPreset(name string, config APIConfig) *Preset {
	return &Preset{
		ID:        uuid.NewString(),
		Name:      name,
		Config:    config.Clone(),
		CreatedAt: time.Now(),
	}
}
