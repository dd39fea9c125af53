package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/rankeval"
	"github.com/kailas-cloud/esdsl/request"
)

func TestDecodeSearch(t *testing.T) {
	data := []byte(`{
		"took": 5, "timed_out": false,
		"_shards": {"total": 1, "successful": 1, "skipped": 0, "failed": 0},
		"hits": {
			"total": {"value": 2, "relation": "eq"},
			"max_score": 1.3,
			"hits": [
				{"_index": "books", "_id": "1", "_score": 1.3, "_source": {"title": "Dune"}},
				{"_index": "books", "_id": "2", "_score": null, "sort": [1999]}
			]
		},
		"suggest": {
			"fix": [{"text": "tring", "offset": 0, "length": 5, "options": [{"text": "string", "score": 0.8, "freq": 3}]}]
		}
	}`)
	r, err := DecodeSearch(data)
	require.NoError(t, err)

	assert.Equal(t, 5, r.Took)
	require.NotNil(t, r.Hits.Total)
	assert.Equal(t, int64(2), r.Hits.Total.Value)
	require.Len(t, r.Hits.Hits, 2)
	assert.Nil(t, r.Hits.Hits[1].Score)

	var doc struct {
		Title string `json:"title"`
	}
	require.NoError(t, r.Hits.Hits[0].DecodeSource(&doc))
	assert.Equal(t, "Dune", doc.Title)
	assert.Error(t, r.Hits.Hits[1].DecodeSource(&doc))

	require.Len(t, r.Suggest["fix"], 1)
	opt := r.Suggest["fix"][0].Options[0]
	assert.Equal(t, "string", opt.Text)
	require.NotNil(t, opt.Freq)
	assert.Equal(t, 3, *opt.Freq)
}

func TestDecodeBulk(t *testing.T) {
	data := []byte(`{
		"took": 30, "errors": true,
		"items": [
			{"index": {"_index": "books", "_id": "1", "_version": 1, "result": "created", "status": 201}},
			{"delete": {"_index": "books", "_id": "2", "result": "not_found", "status": 404}},
			{"create": {"_index": "books", "_id": "3", "status": 409,
				"error": {"type": "version_conflict_engine_exception", "reason": "document already exists"}}}
		]
	}`)
	r, err := DecodeBulk(data)
	require.NoError(t, err)

	assert.True(t, r.Errors)
	require.Len(t, r.Items, 3)
	assert.Equal(t, request.OpIndex, r.Items[0].Operation)
	assert.Equal(t, "created", r.Items[0].Result)
	assert.Equal(t, request.OpDelete, r.Items[1].Operation)
	assert.Equal(t, request.OpCreate, r.Items[2].Operation)

	failed := r.Failures()
	require.Len(t, failed, 2)
	assert.Equal(t, "version_conflict_engine_exception", failed[1].Error.Type)
}

func TestDecodeBulk_UnknownAction(t *testing.T) {
	_, err := DecodeBulk([]byte(`{"took": 1, "errors": false, "items": [{"upsert": {"status": 200}}]}`))
	var ue *codec.UnrecognizedVariantTagError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "upsert", ue.Tag)
	assert.Equal(t, "bulk_operation", ue.Family)
}

func TestDecodeRankEval(t *testing.T) {
	data := []byte(`{
		"metric_score": 0.4,
		"details": {
			"amsterdam_query": {
				"metric_score": 0.6,
				"unrated_docs": [{"_index": "books", "_id": "7"}],
				"hits": [{"hit": {"_index": "books", "_id": "1", "_score": 1.2}, "rating": 1},
				         {"hit": {"_index": "books", "_id": "7", "_score": 0.9}, "rating": null}],
				"metric_details": {"precision": {"relevant_docs_retrieved": 6, "docs_retrieved": 10}}
			},
			"berlin_query": {
				"metric_score": 0.2,
				"unrated_docs": [],
				"hits": [],
				"metric_details": {"precision": {"relevant_docs_retrieved": 2, "docs_retrieved": 10}}
			}
		},
		"failures": {}
	}`)
	r, err := DecodeRankEval(data)
	require.NoError(t, err)

	assert.InDelta(t, 0.4, r.MetricScore, 1e-9)
	require.Len(t, r.Details, 2)
	assert.Equal(t, "amsterdam_query", r.Details[0].ID)
	assert.Equal(t, "berlin_query", r.Details[1].ID)

	q, ok := r.Detail("amsterdam_query")
	require.True(t, ok)
	assert.Equal(t, []DocRef{{Index: "books", ID: "7"}}, q.UnratedDocs)
	require.Len(t, q.Hits, 2)
	require.NotNil(t, q.Hits[0].Rating)
	assert.Nil(t, q.Hits[1].Rating)
	assert.True(t, rankeval.EqualDetail(&rankeval.PrecisionDetail{RelevantDocsRetrieved: 6, DocsRetrieved: 10}, q.MetricDetails))
}

func TestDecodeRankEval_UnknownMetric(t *testing.T) {
	_, err := DecodeRankEval([]byte(`{"metric_score": 1, "details": {"q": {"metric_score": 1, "metric_details": {"ndcg": {}}}}}`))
	assert.ErrorIs(t, err, codec.ErrUnrecognizedTag)
}

func TestParseError(t *testing.T) {
	e := ParseError(404, []byte(`{"error": {"type": "index_not_found_exception", "reason": "no such index [x]", "index": "x",
		"root_cause": [{"type": "index_not_found_exception", "reason": "no such index [x]"}]}, "status": 404}`))
	assert.Equal(t, 404, e.Status)
	assert.Equal(t, "index_not_found_exception", e.Cause.Type)
	assert.Len(t, e.Cause.RootCause, 1)
	assert.Equal(t, "elasticsearch: status 404: index_not_found_exception: no such index [x]", e.Error())

	s := ParseError(400, []byte(`{"error": "bad request"}`))
	assert.Equal(t, "bad request", s.Cause.Reason)

	raw := ParseError(502, []byte("gateway down"))
	assert.Equal(t, "elasticsearch: status 502: gateway down", raw.Error())
}

func TestDecodeSmallResponses(t *testing.T) {
	c, err := DecodeCount([]byte(`{"count": 42, "_shards": {"total": 1, "successful": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.Count)

	g, err := DecodeGet([]byte(`{"_index": "books", "_id": "1", "found": false}`))
	require.NoError(t, err)
	assert.False(t, g.Found)
	assert.Error(t, g.DecodeSource(&struct{}{}))

	w, err := DecodeWrite([]byte(`{"_index": "books", "_id": "1", "_version": 2, "result": "updated"}`))
	require.NoError(t, err)
	assert.Equal(t, "updated", w.Result)

	bq, err := DecodeByQuery([]byte(`{"took": 3, "total": 5, "deleted": 5, "failures": []}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), bq.Deleted)

	ack, err := DecodeAcknowledged([]byte(`{"acknowledged": true, "index": "books"}`))
	require.NoError(t, err)
	assert.True(t, ack.Acknowledged)

	_, err = DecodeCount([]byte(`{`))
	assert.Error(t, err)
}
