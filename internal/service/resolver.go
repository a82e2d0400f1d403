package service

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"propmap/internal/geo"
	"propmap/internal/model"
	"propmap/internal/utils"
)

// maxListed caps how many listings/POIs a reply enumerates
const maxListed = 5

var greetingVariants = [4]string{
	"Hello! I can help you explore the properties on the map. Try asking about prices, sizes, or what's nearby.",
	"Hi there! Ask me about any property, or things like \"find coffee shops near this property\".",
	"Hey! I'm here to help with the listings. You can select a property or ask me to filter by price or size.",
	"Greetings! Ask me anything about the properties or the points of interest around them.",
}

var (
	greetingPattern     = regexp.MustCompile(`(?i)^(hi|hello|hey|greetings|howdy)`)
	selectNamePattern   = regexp.MustCompile(`(?i)(?:use|set|consider|select|about|looking at|for)\s+(?:the\s+)?(?:property|warehouse|building)\s+(.+)`)
	proximityPattern    = regexp.MustCompile(`(?i)(?:find|show|locate)\s+(?:me\s+)?(?:the\s+|a\s+|an\s+|any\s+)?(.+?)\s+(?:near|around|close to|by|within)`)
	distancePattern     = regexp.MustCompile(`(?i)within\s+(\d+(?:\.\d+)?)\s*(miles?|mi|km|kilometers?)`)
	firstIntegerPattern = regexp.MustCompile(`\d[\d,]*`)
	pricePattern        = regexp.MustCompile(`(?i)\$?(\d[\d,]*(?:\.\d+)?)\s*(k|m|thousand|million)?\b`)
	featurePattern      = regexp.MustCompile(`(?i)\bwith\s+([^.?!]+)`)
)

// Resolver turns a raw user utterance into a reply plus side effects by
// evaluating an ordered cascade of (detect, handle) rules. Rule order is the
// precedence: rules overlap (a shipping query is also a generic proximity
// query) and the first rule whose detect fires wins.
type Resolver struct {
	dataset *model.Dataset
	rng     *rand.Rand
	rules   []rule
}

// Resolution is the outcome of one cascade evaluation. ActivePropertyID is
// non-nil when the turn changed the session's active property.
type Resolution struct {
	Result           model.ChatResult
	ActivePropertyID *string
	Rule             string
}

// resolveContext carries per-turn state through the cascade
type resolveContext struct {
	utterance string
	lower     string
	active    *model.Listing
}

type rule struct {
	name   string
	detect func(*resolveContext) *model.Intent
	handle func(*resolveContext, *model.Intent) *Resolution
}

// NewResolver creates a resolver over the dataset snapshot. The rand source
// only drives response-variant selection and is injected so tests can seed it.
func NewResolver(dataset *model.Dataset, rng *rand.Rand) *Resolver {
	r := &Resolver{dataset: dataset, rng: rng}
	r.rules = []rule{
		{"shipping_search", r.detectShippingSearch, r.handleShippingSearch},
		{"greeting", r.detectGreeting, r.handleGreeting},
		{"select_property", r.detectSelectProperty, r.handleSelectProperty},
		{"proximity_search", r.detectProximity, r.handleProximity},
		{"size_filter", r.detectSizeFilter, r.handleSizeFilter},
		{"price_filter", r.detectPriceFilter, r.handlePriceFilter},
		{"feature_filter", r.detectFeatureFilter, r.handleFeatureFilter},
		{"roster", r.detectRoster, r.handleRoster},
		{"superlative", r.detectSuperlative, r.handleSuperlative},
		{"aggregate_stat", r.detectAggregate, r.handleAggregate},
	}
	return r
}

// Resolve evaluates the cascade for one utterance. activeID is the session's
// current active property, or empty. Every input terminates in a reply; the
// cascade never errors.
func (r *Resolver) Resolve(utterance, activeID string) Resolution {
	ctx := &resolveContext{
		utterance: strings.TrimSpace(utterance),
		lower:     strings.ToLower(strings.TrimSpace(utterance)),
	}
	if activeID != "" {
		ctx.active = r.dataset.ListingByID(activeID)
	}

	for _, rl := range r.rules {
		intent := rl.detect(ctx)
		if intent == nil {
			continue
		}
		res := rl.handle(ctx, intent)
		if res == nil {
			// Handler declined (e.g. malformed numeric token): fall through
			// to the next rule instead of erroring.
			continue
		}
		res.Rule = rl.name
		return *res
	}

	return r.fallback(ctx)
}

// --- Rule 1: shipping-service property search across all listings ---

func (r *Resolver) detectShippingSearch(ctx *resolveContext) *model.Intent {
	token := utils.NormalizeShippingToken(ctx.lower)
	if !utils.IsShippingToken(token) {
		return nil
	}
	if !containsAny(ctx.lower, "properties", "near", "close to", "by", "around") {
		return nil
	}
	return &model.Intent{Kind: model.IntentShippingSearch, POIType: token}
}

func (r *Resolver) handleShippingSearch(ctx *resolveContext, intent *model.Intent) *Resolution {
	pois := MatchPOIsByType(r.dataset.POIs, intent.POIType)
	if len(pois) == 0 {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("I couldn't find any %s locations in this area.", carrierLabel(intent.POIType)),
		}}
	}

	listings := ListingsNear(r.dataset.Listings, r.dataset.POIs, intent.POIType, DefaultRadiusKm)
	if len(listings) == 0 {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("There are %d %s locations on the map, but no properties within about 5 miles of them.",
				len(pois), carrierLabel(intent.POIType)),
			SideEffects: []model.SideEffect{model.ShowPOIs(poiIDs(pois))},
		}}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d propert%s within about 5 miles of a %s location:\n",
		len(listings), pluralY(len(listings)), carrierLabel(intent.POIType))
	for i, l := range listings {
		if i == maxListed {
			fmt.Fprintf(&b, "...and %d more.", len(listings)-maxListed)
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", l.Name, formatPrice(l.Price))
	}

	return &Resolution{
		Result: model.ChatResult{
			Reply: strings.TrimSpace(b.String()),
			SideEffects: []model.SideEffect{
				model.ShowPOIs(poiIDs(pois)),
				model.SelectProperty(listings[0].ID),
			},
		},
	}
}

// --- Rule 2: greeting ---

func (r *Resolver) detectGreeting(ctx *resolveContext) *model.Intent {
	if !greetingPattern.MatchString(ctx.utterance) {
		return nil
	}
	return &model.Intent{Kind: model.IntentGreeting}
}

func (r *Resolver) handleGreeting(ctx *resolveContext, _ *model.Intent) *Resolution {
	return &Resolution{Result: model.ChatResult{
		Reply: greetingVariants[r.rng.Intn(len(greetingVariants))],
	}}
}

// --- Rule 3: explicit property selection ---

func (r *Resolver) detectSelectProperty(ctx *resolveContext) *model.Intent {
	if !strings.Contains(ctx.lower, "property") {
		return nil
	}
	if !containsAny(ctx.lower, "use", "select", "looking at") {
		return nil
	}
	intent := &model.Intent{Kind: model.IntentSelectProperty}
	if m := selectNamePattern.FindStringSubmatch(ctx.utterance); len(m) > 1 {
		intent.NameFragment = strings.Trim(strings.TrimSpace(m[1]), `"'.!?`)
	}
	return intent
}

func (r *Resolver) handleSelectProperty(ctx *resolveContext, intent *model.Intent) *Resolution {
	// Exact name containment over the whole utterance wins first
	for i := range r.dataset.Listings {
		l := &r.dataset.Listings[i]
		if l.Name != "" && strings.Contains(ctx.lower, strings.ToLower(l.Name)) {
			return r.selected(l)
		}
	}

	if intent.NameFragment == "" {
		return &Resolution{Result: model.ChatResult{
			Reply: "Which property would you like to look at? " + r.sampleNames(),
		}}
	}

	match, ok := utils.BestMatch(intent.NameFragment, r.dataset.Listings, func(l model.Listing) string {
		return l.Name
	})
	if !ok {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("I couldn't find a property matching \"%s\". %s", intent.NameFragment, r.sampleNames()),
		}}
	}
	return r.selected(r.dataset.ListingByID(match.ID))
}

func (r *Resolver) selected(l *model.Listing) *Resolution {
	id := l.ID
	return &Resolution{
		Result: model.ChatResult{
			Reply: fmt.Sprintf("Now looking at %s — %s, %s, %.0f sqft, built %d. What would you like to know?",
				l.Name, l.Address, formatPrice(l.Price), l.SizeSqft, l.YearBuilt),
			SideEffects: []model.SideEffect{model.SelectProperty(id)},
		},
		ActivePropertyID: &id,
	}
}

func (r *Resolver) sampleNames() string {
	names := make([]string, 0, maxListed)
	for i, l := range r.dataset.Listings {
		if i == maxListed {
			break
		}
		names = append(names, l.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return "Available: " + strings.Join(names, ", ") + "."
}

// --- Rule 4: POI proximity query anchored on the active property ---

func (r *Resolver) detectProximity(ctx *resolveContext) *model.Intent {
	if ctx.active == nil {
		return nil
	}
	if !containsAny(ctx.lower, "find", "show", "locate") {
		return nil
	}

	// The POI-type phrase must sit before a proximity preposition; without
	// one this is not a proximity query and later rules get their shot.
	m := proximityPattern.FindStringSubmatch(ctx.utterance)
	if len(m) < 2 {
		return nil
	}
	phrase := strings.TrimSpace(m[1])
	if phrase == "" {
		return nil
	}

	intent := &model.Intent{Kind: model.IntentProximitySearch, POIType: phrase}
	if types := utils.ExtractCandidateTypes(strings.ToLower(phrase)); len(types) > 0 {
		intent.POIType = types[0]
	} else if containsAny(strings.ToLower(phrase), "propert", "warehouse") {
		// "show me properties around ..." is a listing filter, not a POI query
		return nil
	}

	if m := distancePattern.FindStringSubmatch(ctx.lower); len(m) > 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if strings.HasPrefix(m[2], "mi") {
				intent.RadiusKm = geo.MilesToKm(v)
			} else {
				intent.RadiusKm = v
			}
		}
	}
	return intent
}

func (r *Resolver) handleProximity(ctx *resolveContext, intent *model.Intent) *Resolution {
	radius := intent.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	anchor := ctx.active
	token := utils.NormalizeShippingToken(intent.POIType)

	matched := MatchPOIsByType(r.dataset.POIs, token)
	matched = POIsNear(matched, anchor.Latitude, anchor.Longitude, radius)
	if len(matched) == 0 {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("I couldn't find any %s within %.1f miles of %s.",
				intent.POIType, geo.KmToMiles(radius), anchor.Name),
		}}
	}

	sorted := SortPOIsByDistance(matched, anchor.Latitude, anchor.Longitude)

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s near %s:\n", len(sorted), intent.POIType, anchor.Name)
	for i, p := range sorted {
		if i == maxListed {
			fmt.Fprintf(&b, "...and %d more.", len(sorted)-maxListed)
			break
		}
		miles := geo.KmToMiles(geo.DistanceKm(anchor.Latitude, anchor.Longitude, p.Latitude, p.Longitude))
		fmt.Fprintf(&b, "- %s — %.1f miles away\n", p.Name, miles)
	}

	effects := []model.SideEffect{model.ShowPOIs(poiIDs(sorted))}
	if utils.IsShippingToken(token) {
		effects = append(effects, model.SelectPOI(sorted[0].ID))
	}

	return &Resolution{Result: model.ChatResult{
		Reply:       strings.TrimSpace(b.String()),
		SideEffects: effects,
	}}
}

// --- Rule 5: listing filters (size, price, feature, roster) ---
// All four branches are gated on the utterance talking about the listing
// collection ("properties"/"warehouses").

func (r *Resolver) mentionsCollection(ctx *resolveContext) bool {
	return containsAny(ctx.lower, "properties", "warehouses")
}

func (r *Resolver) detectSizeFilter(ctx *resolveContext) *model.Intent {
	if !r.mentionsCollection(ctx) {
		return nil
	}
	if !containsAny(ctx.lower, "sqft", "sq ft", "square", "size") {
		return nil
	}
	raw := firstIntegerPattern.FindString(ctx.lower)
	if raw == "" {
		return nil
	}
	target, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &model.Intent{Kind: model.IntentSizeFilter, SizeTarget: target}
}

func (r *Resolver) handleSizeFilter(ctx *resolveContext, intent *model.Intent) *Resolution {
	matches := FilterBySize(intent.SizeTarget, r.dataset.Listings)
	if len(matches) == 0 {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("I couldn't find properties around %.0f sqft. Would you like to try a different range?",
				intent.SizeTarget),
		}}
	}
	return &Resolution{Result: model.ChatResult{
		Reply: listSummary(fmt.Sprintf("propert%s around %.0f sqft", pluralY(len(matches)), intent.SizeTarget), matches,
			func(l model.Listing) string { return fmt.Sprintf("%.0f sqft", l.SizeSqft) }),
	}}
}

func (r *Resolver) detectPriceFilter(ctx *resolveContext) *model.Intent {
	if !r.mentionsCollection(ctx) {
		return nil
	}
	if !containsAny(ctx.lower, "$", "price", "under", "below", "less than", "above", "over", "more than", "budget", "cost", "cheaper") {
		return nil
	}
	m := pricePattern.FindStringSubmatch(ctx.lower)
	if len(m) < 2 {
		return nil
	}
	target, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	switch strings.ToLower(m[2]) {
	case "k", "thousand":
		target *= 1_000
	case "m", "million":
		target *= 1_000_000
	}

	mode := model.PriceAround
	if containsAny(ctx.lower, "under", "below", "less than", "cheaper") {
		mode = model.PriceBelow
	} else if containsAny(ctx.lower, "above", "over", "more than") {
		mode = model.PriceAbove
	}
	return &model.Intent{Kind: model.IntentPriceFilter, PriceTarget: target, PriceMode: mode}
}

func (r *Resolver) handlePriceFilter(ctx *resolveContext, intent *model.Intent) *Resolution {
	matches := FilterByPrice(intent.PriceTarget, intent.PriceMode, r.dataset.Listings)
	label := map[string]string{
		model.PriceBelow:  "under",
		model.PriceAbove:  "over",
		model.PriceAround: "around",
	}[intent.PriceMode]
	if len(matches) == 0 {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("I couldn't find properties %s %s. Would you like to try a different range?",
				label, formatPrice(int64(intent.PriceTarget))),
		}}
	}
	return &Resolution{Result: model.ChatResult{
		Reply: listSummary(fmt.Sprintf("propert%s %s %s", pluralY(len(matches)), label, formatPrice(int64(intent.PriceTarget))), matches,
			func(l model.Listing) string { return formatPrice(l.Price) }),
	}}
}

func (r *Resolver) detectFeatureFilter(ctx *resolveContext) *model.Intent {
	if !r.mentionsCollection(ctx) {
		return nil
	}
	m := featurePattern.FindStringSubmatch(ctx.utterance)
	if len(m) < 2 {
		return nil
	}
	fragment := strings.TrimSpace(m[1])
	if fragment == "" {
		return nil
	}
	return &model.Intent{Kind: model.IntentFeatureFilter, Feature: fragment}
}

func (r *Resolver) handleFeatureFilter(ctx *resolveContext, intent *model.Intent) *Resolution {
	matches := FilterByFeature(intent.Feature, r.dataset.Listings)
	if len(matches) == 0 {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("I couldn't find properties with \"%s\". Would you like to try a different feature?",
				intent.Feature),
		}}
	}
	return &Resolution{Result: model.ChatResult{
		Reply: listSummary(fmt.Sprintf("propert%s with %s", pluralY(len(matches)), intent.Feature), matches,
			func(l model.Listing) string { return formatPrice(l.Price) }),
	}}
}

func (r *Resolver) detectRoster(ctx *resolveContext) *model.Intent {
	if !r.mentionsCollection(ctx) {
		return nil
	}
	if !containsAny(ctx.lower, "show all", "list all", "show me all", "how many") {
		return nil
	}
	return &model.Intent{Kind: model.IntentRoster}
}

func (r *Resolver) handleRoster(ctx *resolveContext, _ *model.Intent) *Resolution {
	listings := r.dataset.Listings
	if len(listings) == 0 {
		return &Resolution{Result: model.ChatResult{Reply: "There are no properties loaded right now."}}
	}
	return &Resolution{Result: model.ChatResult{
		Reply: listSummary(fmt.Sprintf("propert%s in total", pluralY(len(listings))), listings,
			func(l model.Listing) string { return formatPrice(l.Price) }),
	}}
}

// --- Rule 6: superlatives ---

// superlativeCues maps utterance phrases to (field, direction), checked in
// declared order.
var superlativeCues = []struct {
	phrases   []string
	field     string
	direction string
}{
	{[]string{"largest", "biggest"}, model.FieldSize, model.DirectionMax},
	{[]string{"smallest"}, model.FieldSize, model.DirectionMin},
	{[]string{"least expensive", "cheapest", "lowest price"}, model.FieldPrice, model.DirectionMin},
	{[]string{"most expensive", "highest price"}, model.FieldPrice, model.DirectionMax},
	{[]string{"newest", "most recent"}, model.FieldYear, model.DirectionMax},
	{[]string{"oldest"}, model.FieldYear, model.DirectionMin},
}

func (r *Resolver) detectSuperlative(ctx *resolveContext) *model.Intent {
	for _, cue := range superlativeCues {
		if containsAny(ctx.lower, cue.phrases...) {
			return &model.Intent{Kind: model.IntentSuperlative, Field: cue.field, Direction: cue.direction}
		}
	}
	return nil
}

func (r *Resolver) handleSuperlative(ctx *resolveContext, intent *model.Intent) *Resolution {
	if len(r.dataset.Listings) == 0 {
		return &Resolution{Result: model.ChatResult{Reply: "There are no properties loaded right now."}}
	}

	value := func(l model.Listing) float64 {
		switch intent.Field {
		case model.FieldPrice:
			return float64(l.Price)
		case model.FieldYear:
			return float64(l.YearBuilt)
		default:
			return l.SizeSqft
		}
	}

	best := r.dataset.Listings[0]
	for _, l := range r.dataset.Listings[1:] {
		if intent.Direction == model.DirectionMax && value(l) > value(best) {
			best = l
		}
		if intent.Direction == model.DirectionMin && value(l) < value(best) {
			best = l
		}
	}

	var detail string
	switch intent.Field {
	case model.FieldPrice:
		detail = formatPrice(best.Price)
	case model.FieldYear:
		detail = fmt.Sprintf("built in %d", best.YearBuilt)
	default:
		detail = fmt.Sprintf("%.0f sqft", best.SizeSqft)
	}

	return &Resolution{Result: model.ChatResult{
		Reply: fmt.Sprintf("That would be %s — %s.", best.Name, detail),
	}}
}

// --- Rule 7: aggregate stats ---

func (r *Resolver) detectAggregate(ctx *resolveContext) *model.Intent {
	switch {
	case containsAny(ctx.lower, "average price", "median price"):
		return &model.Intent{Kind: model.IntentAggregateStat, Field: model.FieldPrice}
	case containsAny(ctx.lower, "average size", "median size"):
		return &model.Intent{Kind: model.IntentAggregateStat, Field: model.FieldSize}
	}
	return nil
}

func (r *Resolver) handleAggregate(ctx *resolveContext, intent *model.Intent) *Resolution {
	listings := r.dataset.Listings
	if len(listings) == 0 {
		return &Resolution{Result: model.ChatResult{Reply: "There are no properties loaded right now."}}
	}

	// "median" is answered with the mean too; the product wording has always
	// meant the mean here.
	var sum float64
	for _, l := range listings {
		if intent.Field == model.FieldPrice {
			sum += float64(l.Price)
		} else {
			sum += l.SizeSqft
		}
	}
	mean := sum / float64(len(listings))

	if intent.Field == model.FieldPrice {
		return &Resolution{Result: model.ChatResult{
			Reply: fmt.Sprintf("The average price across %d properties is %s.", len(listings), formatPrice(int64(mean))),
		}}
	}
	return &Resolution{Result: model.ChatResult{
		Reply: fmt.Sprintf("The average size across %d properties is %.0f sqft.", len(listings), mean),
	}}
}

// --- Rules 8/9: fallbacks ---

func (r *Resolver) fallback(ctx *resolveContext) Resolution {
	if ctx.active != nil {
		return Resolution{
			Result: model.ChatResult{
				Reply: fmt.Sprintf("I'm not sure how to answer that about %s. You can ask things like:\n"+
					"- \"find coffee shops near this property\"\n"+
					"- \"locate fedex within 3 miles\"\n"+
					"- \"show me properties under $800k\"", ctx.active.Name),
			},
			Rule: "fallback_active",
		}
	}
	return Resolution{
		Result: model.ChatResult{
			Reply: "I'm not sure how to answer that. Try selecting a property first, for example: " +
				"\"use property " + r.firstListingName() + "\".",
		},
		Rule: "fallback",
	}
}

func (r *Resolver) firstListingName() string {
	if len(r.dataset.Listings) == 0 {
		return "..."
	}
	return r.dataset.Listings[0].Name
}

// --- helpers ---

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func poiIDs(pois []model.POI) []string {
	ids := make([]string, len(pois))
	for i, p := range pois {
		ids[i] = p.ID
	}
	return ids
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func carrierLabel(token string) string {
	switch token {
	case "fedex":
		return "FedEx"
	case "ups":
		return "UPS"
	case "usps":
		return "USPS"
	case "dhl":
		return "DHL"
	}
	return token
}

// listSummary renders "I found N <what>:" plus up to maxListed entries
func listSummary(what string, listings []model.Listing, detail func(model.Listing) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s:\n", len(listings), what)
	for i, l := range listings {
		if i == maxListed {
			fmt.Fprintf(&b, "...and %d more.", len(listings)-maxListed)
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", l.Name, detail(l))
	}
	return strings.TrimSpace(b.String())
}

// formatPrice renders an integer price with thousands separators
func formatPrice(price int64) string {
	digits := strconv.FormatInt(price, 10)
	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := "$" + b.String()
	if neg {
		out = "-" + out
	}
	return out
}
