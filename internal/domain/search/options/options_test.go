package options

import (
	"math"
	"testing"

	"github.com/kailas-cloud/searchbridge/internal/domain/search/sortby"
)

func boolPtr(v bool) *bool { return &v }

func testConfig() Config {
	return Config{
		SortByOptions: map[string]sortby.Option{"field1:desc": {EnableOverrides: boolPtr(false)}},
		CollectionSpecificSortByOptions: map[string]map[string]sortby.Option{
			"collection2": {"field2:asc": {EnableOverrides: boolPtr(true)}},
		},
		FilterByOptions: map[string]FilterOption{
			"field1": {ExactMatch: boolPtr(false)},
			"field5": {},
		},
		CollectionSpecificFilterByOptions: map[string]map[string]FilterOption{
			"collection1": {"field1": {ExactMatch: boolPtr(true)}, "field2": {ExactMatch: boolPtr(false)}},
		},
		FacetByOptions:                   map[string]string{"field1": "(sort_by: _alpha:asc)"},
		CollectionSpecificFacetByOptions: map[string]map[string]string{"collectionX": {"field1": "(sort_by: _alpha:desc)"}},
		FacetableFieldsWithSpecialChars:  []string{"a", "a:b"},
		AdditionalSearchParameters:       map[string]any{"query_by": "name", "num_typos": 2},
		CollectionSpecificSearchParameters: map[string]map[string]any{
			"brands": {"query_by": "brand_name"},
		},
	}
}

func TestOptions_SortOption(t *testing.T) {
	o := New(testConfig())

	if opt, ok := o.SortOption("collection1", "field1:desc"); !ok || *opt.EnableOverrides {
		t.Errorf("global: %+v %v", opt, ok)
	}
	if opt, ok := o.SortOption("collection2", "field2:asc"); !ok || !*opt.EnableOverrides {
		t.Errorf("collection: %+v %v", opt, ok)
	}
	if _, ok := o.SortOption("collection1", "field2:asc"); ok {
		t.Error("collection-specific option leaked to another collection")
	}
}

func TestOptions_ExactMatch(t *testing.T) {
	o := New(testConfig())

	tests := []struct {
		collection, key string
		want            bool
	}{
		{"collection1", "field1", true},
		{"collection2", "field1", false},
		{"collection1", "field2", false},
		{"collection2", "field2", true},
		{"collection1", "field3", true},
		{"collection1", "field5", true},
	}
	for _, tt := range tests {
		if got := o.ExactMatch(tt.collection, tt.key); got != tt.want {
			t.Errorf("ExactMatch(%q, %q) = %v, want %v", tt.collection, tt.key, got, tt.want)
		}
	}
}

func TestOptions_FacetByOption(t *testing.T) {
	o := New(testConfig())

	if s, _ := o.FacetByOption("", "field1"); s != "(sort_by: _alpha:asc)" {
		t.Errorf("global: %q", s)
	}
	if s, _ := o.FacetByOption("collectionX", "field1"); s != "(sort_by: _alpha:desc)" {
		t.Errorf("collection: %q", s)
	}
	if _, ok := o.FacetByOption("", "field2"); ok {
		t.Error("unexpected option for field2")
	}
}

func TestOptions_SearchParameters(t *testing.T) {
	o := New(testConfig())

	got := o.SearchParameters("brands")
	if got["query_by"] != "brand_name" || got["num_typos"] != 2 {
		t.Errorf("brands: %v", got)
	}
	got["query_by"] = "mutated"
	if again := o.SearchParameters("brands"); again["query_by"] != "brand_name" {
		t.Error("SearchParameters must return a fresh map")
	}
	if got := o.SearchParameters("products"); got["query_by"] != "name" {
		t.Errorf("products: %v", got)
	}
}

func TestOptions_CopiesConfig(t *testing.T) {
	cfg := testConfig()
	o := New(cfg)

	cfg.SortByOptions["price:asc"] = sortby.Option{}
	cfg.CollectionSpecificFacetByOptions["collectionX"]["field1"] = "changed"

	if _, ok := o.SortOption("any", "price:asc"); ok {
		t.Error("options observed a later config change")
	}
	if s, _ := o.FacetByOption("collectionX", "field1"); s != "(sort_by: _alpha:desc)" {
		t.Errorf("nested map not copied: %q", s)
	}
}

func TestOptions_Defaults(t *testing.T) {
	o := Default()
	if o.GeoLocationField() != "_geoloc" {
		t.Errorf("geo field = %q", o.GeoLocationField())
	}
	if len(o.Registry().Fields()) != 0 {
		t.Errorf("registry = %v", o.Registry().Fields())
	}
	if _, ok := o.Union(); ok {
		t.Error("union enabled by default")
	}
	if !o.ExactMatch("c", "f") {
		t.Error("exact match should default to true")
	}
}

func TestOptions_Registry(t *testing.T) {
	fields := New(testConfig()).Registry().Fields()
	if len(fields) != 2 || fields[0] != "a:b" {
		t.Errorf("registry = %v", fields)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{"", false},
		{0, false},
		{0.0, false},
		{math.NaN(), false},
		{true, true},
		{"true", true},
		{"false", true},
		{1, true},
		{map[string]any{}, true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.in); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptions_Union(t *testing.T) {
	v, ok := New(Config{Union: "true"}).Union()
	if !ok || v != "true" {
		t.Errorf("got %v %v", v, ok)
	}
}
