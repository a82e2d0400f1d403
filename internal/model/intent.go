package model

// IntentKind identifies the structured intent parsed from a user utterance
type IntentKind string

const (
	IntentShippingSearch  IntentKind = "shipping_search"
	IntentGreeting        IntentKind = "greeting"
	IntentSelectProperty  IntentKind = "select_property"
	IntentProximitySearch IntentKind = "proximity_search"
	IntentSizeFilter      IntentKind = "size_filter"
	IntentPriceFilter     IntentKind = "price_filter"
	IntentFeatureFilter   IntentKind = "feature_filter"
	IntentRoster          IntentKind = "roster"
	IntentSuperlative     IntentKind = "superlative"
	IntentAggregateStat   IntentKind = "aggregate_stat"
	IntentUnrecognized    IntentKind = "unrecognized"
)

// Price comparison modes
const (
	PriceBelow  = "below"
	PriceAbove  = "above"
	PriceAround = "around"
)

// Superlative / aggregate fields
const (
	FieldSize  = "size"
	FieldPrice = "price"
	FieldYear  = "year"
)

// Superlative directions
const (
	DirectionMax = "max"
	DirectionMin = "min"
)

// Intent is the tagged variant produced fresh from each utterance and
// consumed immediately by the resolver; it is never persisted. Only the
// fields relevant to Kind are populated.
type Intent struct {
	Kind IntentKind

	NameFragment string  // select_property: attempted property name
	POIType      string  // shipping_search / proximity_search
	RadiusKm     float64 // proximity radius, 0 means default
	SizeTarget   float64 // size_filter
	PriceTarget  float64 // price_filter
	PriceMode    string  // price_filter: below / above / around
	Feature      string  // feature_filter
	Field        string  // superlative / aggregate_stat
	Direction    string  // superlative: max / min
}
