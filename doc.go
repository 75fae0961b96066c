// Package searchbridge translates InstantSearch-style widget requests into
// Typesense multi-search calls.
//
// Translation runs locally and needs no backend:
//
//	a, _ := searchbridge.New(searchbridge.WithOptions(searchbridge.Options{
//	    SortByOptions: map[string]searchbridge.SortOption{"price:asc": {}},
//	}))
//	t, _ := a.Translate([]searchbridge.Request{{
//	    IndexName: "products/sort/price:asc",
//	    Params: map[string]any{
//	        "query":          "phone",
//	        "facetFilters":   []any{[]any{"brand:Apple", "brand:Samsung"}},
//	        "numericFilters": []any{"price>=100", "price<=500"},
//	    },
//	}})
//	// t.Searches[0]["filter_by"] == "brand:=[`Apple`,`Samsung`] && price:=[100..500]"
//
// With a backend the adapter also executes the batch:
//
//	a, _ := searchbridge.New(searchbridge.WithBackend("http://localhost:8108", "xyz"))
//	results, _ := a.Search(ctx, requests)
package searchbridge
