package services

import (
	"net/url"
	"strings"
)

// The URL fragment is the only persisted filter/sort state: it must round
// trip losslessly (DecodeFragment(EncodeFragment(f, s)) == (f, s)) and stay
// minimal (default-valued fields are omitted, so the default view encodes to
// an empty string). Keys are emitted in a fixed order so equal states always
// produce identical fragments.

const sortParam = "sort"

// fragmentKeys is the canonical emission order for filter parameters.
var fragmentKeys = []string{
	"search",
	"location",
	"ageRange",
	"programType",
	"accreditation",
	"openTime",
	"closeTime",
	"openingsNow",
	"acceptsSubsidy",
	"firstClassPreK",
}

// setKeys are the multi-select facets, serialized as one comma-joined value.
var setKeys = map[string]bool{
	"location":      true,
	"ageRange":      true,
	"programType":   true,
	"accreditation": true,
}

// boolKeys are the tri-state quick filters, serialized as literal
// "true"/"false" only when a constraint is set.
var boolKeys = map[string]bool{
	"openingsNow":    true,
	"acceptsSubsidy": true,
	"firstClassPreK": true,
}

// EncodeFragment serializes filter and sort state into a fragment string
// (without the leading "#").
func EncodeFragment(state FilterState, sort SortKey) string {
	var params []string
	appendParam := func(key, value string) {
		if value != "" {
			params = append(params, key+"="+url.QueryEscape(value))
		}
	}

	for _, key := range fragmentKeys {
		switch {
		case setKeys[key]:
			appendParam(key, strings.Join(state.set(key), ","))
		case boolKeys[key]:
			if b := state.triState(key); b != nil {
				if *b {
					appendParam(key, "true")
				} else {
					appendParam(key, "false")
				}
			}
		default:
			appendParam(key, state.scalar(key))
		}
	}

	if sort != DefaultSortKey {
		params = append(params, sortParam+"="+url.QueryEscape(string(sort)))
	}

	return strings.Join(params, "&")
}

// DecodeFragment parses a fragment string (with or without the leading "#")
// back into filter and sort state. State is rebuilt from defaults so nothing
// stale survives a navigation. Unknown keys and malformed tokens are dropped
// silently; a fragment can never prevent the default view from rendering.
func DecodeFragment(fragment string) (FilterState, SortKey) {
	state := FilterState{}
	sort := DefaultSortKey

	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return state, sort
	}

	// ParseQuery reports the first malformed pair but still returns
	// everything it could parse; that partial result is exactly what we
	// want.
	values, _ := url.ParseQuery(fragment)

	if v := values.Get(sortParam); v != "" {
		sort = ParseSortKey(v)
	}

	for _, key := range fragmentKeys {
		v := values.Get(key)
		if v == "" {
			continue
		}
		switch {
		case setKeys[key]:
			state.setSet(key, strings.Split(v, ","))
		case boolKeys[key]:
			b := v == "true"
			state.setTriState(key, &b)
		default:
			state.setScalar(key, v)
		}
	}

	return state, sort
}

// The accessors below route serialized keys to FilterState fields, keeping
// the codec's key list in one place.

func (f *FilterState) set(key string) []string {
	switch key {
	case "location":
		return f.Location
	case "ageRange":
		return f.AgeRange
	case "programType":
		return f.ProgramType
	case "accreditation":
		return f.Accreditation
	}
	return nil
}

func (f *FilterState) setSet(key string, values []string) {
	switch key {
	case "location":
		f.Location = values
	case "ageRange":
		f.AgeRange = values
	case "programType":
		f.ProgramType = values
	case "accreditation":
		f.Accreditation = values
	}
}

func (f *FilterState) triState(key string) *bool {
	switch key {
	case "openingsNow":
		return f.OpeningsNow
	case "acceptsSubsidy":
		return f.AcceptsSubsidy
	case "firstClassPreK":
		return f.FirstClassPreK
	}
	return nil
}

func (f *FilterState) setTriState(key string, value *bool) {
	switch key {
	case "openingsNow":
		f.OpeningsNow = value
	case "acceptsSubsidy":
		f.AcceptsSubsidy = value
	case "firstClassPreK":
		f.FirstClassPreK = value
	}
}

func (f *FilterState) scalar(key string) string {
	switch key {
	case "search":
		return f.Search
	case "openTime":
		return f.OpenTime
	case "closeTime":
		return f.CloseTime
	}
	return ""
}

func (f *FilterState) setScalar(key, value string) {
	switch key {
	case "search":
		f.Search = value
	case "openTime":
		f.OpenTime = value
	case "closeTime":
		f.CloseTime = value
	}
}
