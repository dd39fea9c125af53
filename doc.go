// Package esdsl is a client-side Elasticsearch mapping layer: typed query,
// suggester and rank-evaluation values that encode to and decode from the
// cluster's tag-keyed JSON, request builders that validate before anything
// leaves the process, and a client that assembles requests and sends them
// through the official go-elasticsearch transport.
//
// # Building and sending a search
//
//	client, _ := esdsl.New(esdsl.WithAddresses("http://localhost:9200"))
//	req, _ := request.NewSearchBuilder("books").
//	    Query(query.Term("genre", "scifi")).
//	    Size(10).
//	    Build()
//	res, _ := client.Search(ctx, req)
//
// # Semantic search
//
//	client, _ := esdsl.New(
//	    esdsl.WithAddresses("http://localhost:9200"),
//	    esdsl.WithOpenAI(apiKey, "", "text-embedding-3-small", 0),
//	)
//	knn, _ := client.KNN(ctx, "title_vector", "space opera", 10, 100)
//	req, _ := request.NewSearchBuilder("books").KNN(knn).Build()
//
// # Bulk loading
//
//	bi := client.NewBulkIndexer("books", esdsl.WithChunkSize(500), esdsl.WithConcurrency(4))
//	summary, _ := bi.Run(ctx, ops)
package esdsl
