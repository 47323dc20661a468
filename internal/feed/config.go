package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/openagora/agora/internal/content"
)

// Priorities defines the base priority tables for both organizer branches.
type Priorities struct {
	ChainEntityMutual float64 `json:"chain_entity_mutual"` // default: 100
	ChainMutual       float64 `json:"chain_mutual"`        // default: 85
	ChainFollowing    float64 `json:"chain_following"`     // default: 70
	ChainFollower     float64 `json:"chain_follower"`      // default: 55
	ChainNone         float64 `json:"chain_none"`          // default: 40

	DirectMutual    float64 `json:"direct_mutual"`    // default: 100
	DirectFollowing float64 `json:"direct_following"` // default: 85
	DirectFollower  float64 `json:"direct_follower"`  // default: 70
	DirectNone      float64 `json:"direct_none"`      // default: 40
}

// DecayWeights defines the per-view priority penalty per relationship tier.
type DecayWeights struct {
	EntityMutual float64 `json:"entity_mutual"` // default: 25
	Mutual       float64 `json:"mutual"`        // default: 21.25
	Following    float64 `json:"following"`     // default: 17.5
	Follower     float64 `json:"follower"`      // default: 13.75
	None         float64 `json:"none"`          // default: 10
}

// Calibration holds all tunable ranking parameters. It is loaded from a
// JSON file at startup and allows deploy-time tuning without code changes.
type Calibration struct {
	Version    string       `json:"version"`
	Priorities Priorities   `json:"priorities"`
	Decay      DecayWeights `json:"decay"`

	// RecencyKinds lists the content kinds that receive the linear recency
	// bonus. The historical behavior applied it to ads and events only;
	// the list makes that an explicit, tunable choice.
	RecencyKinds []string `json:"recency_kinds"`

	// RecencyWindowHours is the age, in hours, at which the recency bonus
	// reaches zero. The bonus is max(0, window - ageHours).
	RecencyWindowHours float64 `json:"recency_window_hours"`

	// FanOut bounds the number of concurrent organizer resolutions.
	FanOut int `json:"fan_out"`
}

// DefaultCalibration returns the default ranking calibration.
//
// Base priority, chain branch (place/shop backed by a user), first match wins:
//
//	entity-follow + mutual -> 100, mutual -> 85, following -> 70,
//	follower -> 55, none -> 40
//
// Base priority, direct-user branch:
//
//	mutual -> 100, following -> 85, follower -> 70, none -> 40
//
// View decay is per view, subtracted on first-page personalized requests
// only, clamped at zero.
func DefaultCalibration() *Calibration {
	return &Calibration{
		Priorities: Priorities{
			ChainEntityMutual: 100,
			ChainMutual:       85,
			ChainFollowing:    70,
			ChainFollower:     55,
			ChainNone:         40,
			DirectMutual:      100,
			DirectFollowing:   85,
			DirectFollower:    70,
			DirectNone:        40,
		},
		Decay: DecayWeights{
			EntityMutual: 25,
			Mutual:       21.25,
			Following:    17.5,
			Follower:     13.75,
			None:         10,
		},
		RecencyKinds:       []string{string(content.KindAd), string(content.KindEvent)},
		RecencyWindowHours: 100,
		FanOut:             8,
	}
}

// RecencyEnabled reports whether the given kind receives the recency bonus.
func (c *Calibration) RecencyEnabled(kind content.Kind) bool {
	for _, k := range c.RecencyKinds {
		if k == string(kind) {
			return true
		}
	}
	return false
}

// LoadCalibration loads ranking calibration from a JSON file. Missing or
// unreadable files degrade to defaults with a warning, so a bad deploy
// never takes ranking down. Partial files are merged over the defaults.
func LoadCalibration(filePath string) (*Calibration, error) {
	if filePath == "" {
		return DefaultCalibration(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read feed calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultCalibration(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var loaded Calibration
	if err := json.Unmarshal(data, &loaded); err != nil {
		slog.Warn("failed to parse feed calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultCalibration(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	merged := MergeCalibration(DefaultCalibration(), &loaded)
	slog.Info("loaded feed calibration",
		"path", filePath,
		"version", merged.Version,
		"recency_kinds", merged.RecencyKinds,
		"fan_out", merged.FanOut)

	return merged, nil
}

// MergeCalibration merges override values onto base. Only non-zero numeric
// fields and non-nil slices from the override are applied, so a calibration
// file may specify just the parameters it wants to change.
func MergeCalibration(base, override *Calibration) *Calibration {
	if base == nil {
		base = DefaultCalibration()
	}
	result := *base
	if override == nil {
		return &result
	}

	if override.Version != "" {
		result.Version = override.Version
	}

	mergeFloats := func(dst *float64, src float64) {
		if src != 0 {
			*dst = src
		}
	}

	mergeFloats(&result.Priorities.ChainEntityMutual, override.Priorities.ChainEntityMutual)
	mergeFloats(&result.Priorities.ChainMutual, override.Priorities.ChainMutual)
	mergeFloats(&result.Priorities.ChainFollowing, override.Priorities.ChainFollowing)
	mergeFloats(&result.Priorities.ChainFollower, override.Priorities.ChainFollower)
	mergeFloats(&result.Priorities.ChainNone, override.Priorities.ChainNone)
	mergeFloats(&result.Priorities.DirectMutual, override.Priorities.DirectMutual)
	mergeFloats(&result.Priorities.DirectFollowing, override.Priorities.DirectFollowing)
	mergeFloats(&result.Priorities.DirectFollower, override.Priorities.DirectFollower)
	mergeFloats(&result.Priorities.DirectNone, override.Priorities.DirectNone)

	mergeFloats(&result.Decay.EntityMutual, override.Decay.EntityMutual)
	mergeFloats(&result.Decay.Mutual, override.Decay.Mutual)
	mergeFloats(&result.Decay.Following, override.Decay.Following)
	mergeFloats(&result.Decay.Follower, override.Decay.Follower)
	mergeFloats(&result.Decay.None, override.Decay.None)

	if override.RecencyKinds != nil {
		result.RecencyKinds = append([]string(nil), override.RecencyKinds...)
	}
	mergeFloats(&result.RecencyWindowHours, override.RecencyWindowHours)
	if override.FanOut != 0 {
		result.FanOut = override.FanOut
	}

	return &result
}
