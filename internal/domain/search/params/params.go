// Package params models the backend-ready search parameters and the batch
// envelope sent to the multi-search endpoint.
package params

// Backend search parameter names.
const (
	Collection          = "collection"
	Q                   = "q"
	Page                = "page"
	PerPage             = "per_page"
	QueryBy             = "query_by"
	FilterBy            = "filter_by"
	FacetBy             = "facet_by"
	MaxFacetValues      = "max_facet_values"
	FacetQuery          = "facet_query"
	SortBy              = "sort_by"
	EnableOverrides     = "enable_overrides"
	OverrideTags        = "override_tags"
	HighlightFullFields = "highlight_full_fields"
	HighlightStartTag   = "highlight_start_tag"
	HighlightEndTag     = "highlight_end_tag"
	Conversation        = "conversation"
	ConversationID      = "conversation_id"
	ConversationModelID = "conversation_model_id"
)

// DefaultQuery matches every document.
const DefaultQuery = "*"

// ConversationalKeys are hoisted out of every search into the common parameters.
var ConversationalKeys = []string{Q, Conversation, ConversationID, ConversationModelID}

// SearchParameters is one translated search (a SearchParameterSet), or the
// common parameters of a batch.
type SearchParameters map[string]any

// String returns the value of key if it is a string.
func (p SearchParameters) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Has reports whether key is set.
func (p SearchParameters) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// IsConversational reports whether conversation is set to true.
func (p SearchParameters) IsConversational() bool {
	v, ok := p[Conversation].(bool)
	return ok && v
}

// Envelope is the multi-search request body.
type Envelope struct {
	Searches []SearchParameters `json:"searches"`
	Union    any                `json:"union,omitempty"`
}
