package filter

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/searchbridge/internal/domain"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/token"
)

func TestNumeric(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		registry []string
		want     string
	}{
		{
			name:   "range merge",
			tokens: []string{"field1<=634", "field1>=289"},
			want:   "field1:=[289..634]",
		},
		{
			name:   "plain fields",
			tokens: []string{"field1<=634", "field1>=289", "field2<=5", "field3>=3", "field4:with:colon.and.dot:<=3"},
			want:   "field1:=[289..634] && field2:<=5 && field3:>=3 && field4:with:colon.and.dot::<=3",
		},
		{
			name: "registered special characters",
			tokens: []string{
				"field1<=634", "field1>=289", "field2<=5", "field3>=3",
				"field4>numeric-special=characters:and:colon<=3",
			},
			registry: []string{"field4>numeric-special=characters:and:colon"},
			want:     "field1:=[289..634] && field2:<=5 && field3:>=3 && field4>numeric-special=characters:and:colon:<=3",
		},
		{
			name:   "join range",
			tokens: []string{"$product_prices(price.current)<=2684", "$product_prices(price.current)>=100"},
			want:   "$product_prices(price.current:=[100..2684])",
		},
		{
			name:   "join single operator",
			tokens: []string{"$product_prices(price.current)>=100"},
			want:   "$product_prices(price.current:>=100)",
		},
		{
			name: "join after plain",
			tokens: []string{
				"field1<=634", "field1>=289",
				"$product_prices(price.current)<=2684", "$product_prices(price.current)>=100",
			},
			want: "field1:=[289..634] && $product_prices(price.current:=[100..2684])",
		},
		{
			name:   "join equality",
			tokens: []string{"$product_prices(quantity)=5"},
			want:   "$product_prices(quantity:=5)",
		},
		{
			name:   "same join grouped",
			tokens: []string{"$product_prices(price.current)>=100", "$product_prices(quantity)=5"},
			want:   "$product_prices(price.current:>=100 && quantity:=5)",
		},
		{
			name:   "join slot opened before plain",
			tokens: []string{"$product_prices(price.current)>=100", "rating>=4", "$product_prices(quantity)=5"},
			want:   "$product_prices(price.current:>=100 && quantity:=5) && rating:>=4",
		},
		{
			name: "two joins",
			tokens: []string{
				"$product_prices(price.current)>=100", "$product_reviews(rating)>=4", "$product_prices(quantity)=5",
			},
			want: "$product_prices(price.current:>=100 && quantity:=5) && $product_reviews(rating:>=4)",
		},
		{
			name:   "last bound wins",
			tokens: []string{"price>=1", "price>=7"},
			want:   "price:>=7",
		},
		{
			name:   "other operators keep position",
			tokens: []string{"price!=3", "price<=10", "price>2", "price>=1"},
			want:   "price:!=3 && price:=[1..10] && price:>2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Numeric(tt.tokens, token.NewRegistry(tt.registry))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got:  %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestNumeric_BoundsOrderIndependent(t *testing.T) {
	orders := [][]string{
		{"field1<=634", "field1>=289"},
		{"field1>=289", "field1<=634"},
	}
	for _, tokens := range orders {
		got, err := Numeric(tokens, token.Registry{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "field1:=[289..634]" {
			t.Errorf("%v -> %q", tokens, got)
		}
	}
}

func TestNumeric_Empty(t *testing.T) {
	got, err := Numeric(nil, token.Registry{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestNumeric_Malformed(t *testing.T) {
	_, err := Numeric([]string{"price<=10", "price"}, token.Registry{})
	if !errors.Is(err, domain.ErrMalformedFilter) {
		t.Fatalf("expected ErrMalformedFilter, got %v", err)
	}
}

func TestParseRange_RoundTrip(t *testing.T) {
	tests := []struct {
		field, lower, upper string
	}{
		{"field1", "289", "634"},
		{"price.current", "-10.5", "2684"},
		{"field4:with:colons", "0", "1e3"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			clause, err := Numeric([]string{tt.field + "<=" + tt.upper, tt.field + ">=" + tt.lower}, token.Registry{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			r, err := ParseRange(clause)
			if err != nil {
				t.Fatalf("ParseRange(%q): %v", clause, err)
			}
			if r.Field != tt.field || r.Lower != tt.lower || r.Upper != tt.upper {
				t.Errorf("ParseRange(%q) = %+v", clause, r)
			}
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, clause := range []string{"field1:>=3", "field1:=[a..b]", ":=[1..2]", "field1:=[1..2"} {
		if _, err := ParseRange(clause); !errors.Is(err, domain.ErrMalformedFilter) {
			t.Errorf("ParseRange(%q): expected ErrMalformedFilter, got %v", clause, err)
		}
	}
}
