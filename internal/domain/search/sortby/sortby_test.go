package sortby

import "testing"

type allowList struct {
	global     map[string]Option
	collection map[string]map[string]Option
}

func (a allowList) SortOption(collection, spec string) (Option, bool) {
	if o, ok := a.collection[collection][spec]; ok {
		return o, true
	}
	o, ok := a.global[spec]
	return o, ok
}

func boolPtr(v bool) *bool { return &v }

func TestResolve(t *testing.T) {
	lookup := allowList{
		global: map[string]Option{"field1:desc": {EnableOverrides: boolPtr(false)}},
		collection: map[string]map[string]Option{
			"collection2": {"field2:asc": {EnableOverrides: boolPtr(true)}},
		},
	}

	tests := []struct {
		name      string
		indexName string
		want      Directive
		overrides *bool
	}{
		{
			name:      "no sort segment",
			indexName: "collection1",
			want:      Directive{Collection: "collection1"},
		},
		{
			name:      "global option",
			indexName: "collection1/sort/field1:desc",
			want:      Directive{Collection: "collection1", SortBy: "field1:desc"},
			overrides: boolPtr(false),
		},
		{
			name:      "collection specific option",
			indexName: "collection2/sort/field2:asc",
			want:      Directive{Collection: "collection2", SortBy: "field2:asc"},
			overrides: boolPtr(true),
		},
		{
			name:      "global option applies to any collection",
			indexName: "collection2/sort/field1:desc",
			want:      Directive{Collection: "collection2", SortBy: "field1:desc"},
			overrides: boolPtr(false),
		},
		{
			name:      "collection specific option is scoped",
			indexName: "collection1/sort/field2:asc",
			want:      Directive{Collection: "collection1"},
		},
		{
			name:      "unknown spec dropped",
			indexName: "collection1/sort/price:asc",
			want:      Directive{Collection: "collection1"},
		},
		{
			name:      "empty spec",
			indexName: "collection1/sort/",
			want:      Directive{Collection: "collection1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.indexName, lookup)
			if got.Collection != tt.want.Collection || got.SortBy != tt.want.SortBy {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.HasSort() != (tt.want.SortBy != "") {
				t.Errorf("HasSort = %v", got.HasSort())
			}
			switch {
			case tt.overrides == nil && got.EnableOverrides != nil:
				t.Errorf("EnableOverrides = %v, want nil", *got.EnableOverrides)
			case tt.overrides != nil && (got.EnableOverrides == nil || *got.EnableOverrides != *tt.overrides):
				t.Errorf("EnableOverrides = %v, want %v", got.EnableOverrides, *tt.overrides)
			}
		})
	}
}

func TestResolve_OptionWithoutOverrides(t *testing.T) {
	lookup := allowList{global: map[string]Option{"price:asc": {}}}
	got := Resolve("products/sort/price:asc", lookup)
	if got.SortBy != "price:asc" || got.EnableOverrides != nil {
		t.Errorf("got %+v", got)
	}
}

func TestResolve_NilLookup(t *testing.T) {
	got := Resolve("products/sort/price:asc", nil)
	if got.Collection != "products" || got.HasSort() {
		t.Errorf("got %+v", got)
	}
}
