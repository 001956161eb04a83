// Package locations holds the fixed reference list of (state, county)
// pairs that ads may target. The dataset is compiled into the binary;
// a location outside this list is rejected at validation time.
package locations

import (
	_ "embed"
	"encoding/json"
	"sort"
)

//go:embed data/counties.json
var countiesJSON []byte

var countiesByState map[string][]string

func init() {
	if err := json.Unmarshal(countiesJSON, &countiesByState); err != nil {
		panic("locations: bad embedded county dataset: " + err.Error())
	}
}

// States returns all states in the reference list, sorted.
func States() []string {
	states := make([]string, 0, len(countiesByState))
	for s := range countiesByState {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// CountiesForState returns the counties of a state, or nil for an
// unknown state.
func CountiesForState(state string) []string {
	counties := countiesByState[state]
	out := make([]string, len(counties))
	copy(out, counties)
	return out
}

// IsValid reports whether (state, county) is in the reference list.
func IsValid(state, county string) bool {
	for _, c := range countiesByState[state] {
		if c == county {
			return true
		}
	}
	return false
}
