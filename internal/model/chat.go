package model

import "time"

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatTurn is a single entry in a session's conversation history
type ChatTurn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Side effect kinds emitted by the resolver for the map/UI layer
const (
	EffectSelectProperty = "select_property"
	EffectSelectPOI      = "select_poi"
	EffectShowPOIs       = "show_pois"
)

// SideEffect is a structured instruction for the map/UI layer. The core never
// renders anything; it only describes what the UI should do.
type SideEffect struct {
	Kind       string   `json:"kind"`
	PropertyID string   `json:"property_id,omitempty"`
	POIID      string   `json:"poi_id,omitempty"`
	POIIDs     []string `json:"poi_ids,omitempty"`
}

// SelectProperty builds a select-property side effect
func SelectProperty(id string) SideEffect {
	return SideEffect{Kind: EffectSelectProperty, PropertyID: id}
}

// SelectPOI builds a select-POI side effect
func SelectPOI(id string) SideEffect {
	return SideEffect{Kind: EffectSelectPOI, POIID: id}
}

// ShowPOIs builds a show-POIs side effect
func ShowPOIs(ids []string) SideEffect {
	return SideEffect{Kind: EffectShowPOIs, POIIDs: ids}
}

// ChatResult is the outcome of resolving one user turn
type ChatResult struct {
	Reply       string       `json:"reply"`
	SideEffects []SideEffect `json:"side_effects,omitempty"`
}
