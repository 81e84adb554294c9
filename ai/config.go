package ai

import "github.com/domino14/blockfish/eval"

// Parameters are the scoring weights handed to the evaluator unchanged.
type Parameters = eval.Parameters

// Config controls one analysis. It is a plain value, so copying it is
// enough to isolate a job from later changes.
type Config struct {
	// SearchLimit bounds the number of nodes the search generates. The
	// root moves are always generated even when it is zero.
	SearchLimit uint       `json:"search_limit" yaml:"search_limit" mapstructure:"search_limit"`
	Parameters  Parameters `json:"parameters" yaml:"parameters" mapstructure:"parameters"`
}

// DefaultSearchLimit is the node budget of DefaultConfig.
const DefaultSearchLimit = 25000

// DefaultConfig returns the configuration a new host session starts with.
func DefaultConfig() Config {
	return Config{
		SearchLimit: DefaultSearchLimit,
		Parameters:  eval.DefaultParameters(),
	}
}
