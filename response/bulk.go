package response

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/request"
)

// BulkItem is the outcome of one bulk operation.
type BulkItem struct {
	Operation   request.OperationType
	Index       string
	ID          string
	Status      int
	Result      string
	Version     int64
	SeqNo       int64
	PrimaryTerm int64
	Error       *ErrorCause
}

// Failed reports whether the item was rejected.
func (i BulkItem) Failed() bool { return i.Error != nil || i.Status >= 300 }

// BulkResponse is the result of a bulk request. Items are in request order.
type BulkResponse struct {
	Took   int
	Errors bool
	Items  []BulkItem
}

// Failures returns the rejected items.
func (r *BulkResponse) Failures() []BulkItem {
	var out []BulkItem
	for _, it := range r.Items {
		if it.Failed() {
			out = append(out, it)
		}
	}
	return out
}

// DecodeBulk decodes a bulk response. Every item is keyed by the action tag
// it answers.
func DecodeBulk(data []byte) (*BulkResponse, error) {
	r, err := codec.NewReader(data)
	if err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}
	out := &BulkResponse{Took: r.Int("took")}
	if b := r.OptBool("errors"); b != nil {
		out.Errors = *b
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}
	for i, raw := range r.Elements("items") {
		item, err := decodeBulkItem(raw)
		if err != nil {
			return nil, fmt.Errorf("decode bulk item %d: %w", i, err)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func decodeBulkItem(raw []byte) (BulkItem, error) {
	obj, err := codec.NewReader(raw)
	if err != nil {
		return BulkItem{}, err
	}
	tag, err := request.OperationRegistry().Match(obj)
	if err != nil {
		return BulkItem{}, err
	}
	var body struct {
		Index       string      `json:"_index"`
		ID          string      `json:"_id"`
		Status      int         `json:"status"`
		Result      string      `json:"result"`
		Version     int64       `json:"_version"`
		SeqNo       int64       `json:"_seq_no"`
		PrimaryTerm int64       `json:"_primary_term"`
		Error       *ErrorCause `json:"error"`
	}
	if err := json.Unmarshal(obj.Raw(tag), &body); err != nil {
		return BulkItem{}, fmt.Errorf("%s item: %w", tag, err)
	}
	return BulkItem{
		Operation:   request.OperationType(tag),
		Index:       body.Index,
		ID:          body.ID,
		Status:      body.Status,
		Result:      body.Result,
		Version:     body.Version,
		SeqNo:       body.SeqNo,
		PrimaryTerm: body.PrimaryTerm,
		Error:       body.Error,
	}, nil
}
