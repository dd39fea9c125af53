package response

import (
	"fmt"

	"github.com/goccy/go-json"
)

// TotalHits is the hit count and whether it is exact ("eq") or a lower
// bound ("gte").
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// Hit is one search result.
type Hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source,omitempty"`
	Sort   []any           `json:"sort,omitempty"`
}

// DecodeSource unmarshals the stored document into v.
func (h Hit) DecodeSource(v any) error {
	if len(h.Source) == 0 {
		return fmt.Errorf("hit %s/%s has no _source", h.Index, h.ID)
	}
	return json.Unmarshal(h.Source, v)
}

// Hits is the hits section of a search response.
type Hits struct {
	Total    *TotalHits `json:"total,omitempty"`
	MaxScore *float64   `json:"max_score"`
	Hits     []Hit      `json:"hits"`
}

// SuggestOption is one candidate of a suggestion entry. Term and phrase
// suggesters fill Text, Score and Freq; completion fills the document fields.
type SuggestOption struct {
	Text         string          `json:"text"`
	Score        float64         `json:"score"`
	Freq         *int            `json:"freq,omitempty"`
	Highlighted  string          `json:"highlighted,omitempty"`
	CollateMatch *bool           `json:"collate_match,omitempty"`
	Index        string          `json:"_index,omitempty"`
	ID           string          `json:"_id,omitempty"`
	Source       json.RawMessage `json:"_source,omitempty"`
}

// SuggestEntry is the result for one token (term) or for the whole text.
type SuggestEntry struct {
	Text    string          `json:"text"`
	Offset  int             `json:"offset"`
	Length  int             `json:"length"`
	Options []SuggestOption `json:"options"`
}

// SearchResponse is the result of a search.
type SearchResponse struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Shards       Shards                     `json:"_shards"`
	Hits         Hits                       `json:"hits"`
	Suggest      map[string][]SuggestEntry  `json:"suggest,omitempty"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}

// DecodeSearch decodes a search response.
func DecodeSearch(data []byte) (*SearchResponse, error) { return decode[SearchResponse](data, "search") }

// CountResponse is the result of a count.
type CountResponse struct {
	Count  int64  `json:"count"`
	Shards Shards `json:"_shards"`
}

// DecodeCount decodes a count response.
func DecodeCount(data []byte) (*CountResponse, error) { return decode[CountResponse](data, "count") }
