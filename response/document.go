package response

import (
	"fmt"

	"github.com/goccy/go-json"
)

// GetResponse is the result of a get.
type GetResponse struct {
	Index       string          `json:"_index"`
	ID          string          `json:"_id"`
	Version     int64           `json:"_version,omitempty"`
	SeqNo       int64           `json:"_seq_no,omitempty"`
	PrimaryTerm int64           `json:"_primary_term,omitempty"`
	Found       bool            `json:"found"`
	Source      json.RawMessage `json:"_source,omitempty"`
}

// DecodeSource unmarshals the stored document into v.
func (r *GetResponse) DecodeSource(v any) error {
	if !r.Found || len(r.Source) == 0 {
		return fmt.Errorf("document %s/%s has no _source", r.Index, r.ID)
	}
	return json.Unmarshal(r.Source, v)
}

// DecodeGet decodes a get response.
func DecodeGet(data []byte) (*GetResponse, error) { return decode[GetResponse](data, "get") }

// WriteResponse is the result of an index, create, update or delete.
type WriteResponse struct {
	Index       string `json:"_index"`
	ID          string `json:"_id"`
	Version     int64  `json:"_version"`
	Result      string `json:"result"`
	SeqNo       int64  `json:"_seq_no"`
	PrimaryTerm int64  `json:"_primary_term"`
	Shards      Shards `json:"_shards"`
}

// DecodeWrite decodes a single document write response.
func DecodeWrite(data []byte) (*WriteResponse, error) { return decode[WriteResponse](data, "write") }

// ByQueryResponse is the result of reindex, delete_by_query and
// update_by_query. With wait_for_completion=false only Task is set.
type ByQueryResponse struct {
	Took             int               `json:"took"`
	TimedOut         bool              `json:"timed_out"`
	Total            int64             `json:"total"`
	Updated          int64             `json:"updated"`
	Created          int64             `json:"created"`
	Deleted          int64             `json:"deleted"`
	Batches          int               `json:"batches"`
	VersionConflicts int64             `json:"version_conflicts"`
	Noops            int64             `json:"noops"`
	Failures         []json.RawMessage `json:"failures,omitempty"`
	Task             string            `json:"task,omitempty"`
}

// DecodeByQuery decodes a by-query response.
func DecodeByQuery(data []byte) (*ByQueryResponse, error) {
	return decode[ByQueryResponse](data, "by-query")
}

// AcknowledgedResponse is the result of index management calls.
type AcknowledgedResponse struct {
	Acknowledged       bool   `json:"acknowledged"`
	ShardsAcknowledged bool   `json:"shards_acknowledged,omitempty"`
	Index              string `json:"index,omitempty"`
}

// DecodeAcknowledged decodes an acknowledged response.
func DecodeAcknowledged(data []byte) (*AcknowledgedResponse, error) {
	return decode[AcknowledgedResponse](data, "acknowledged")
}
