// Package semsearch embeds the semantic document search engine in a Go program.
//
// A Client owns a document corpus, per-user request accounting, a result
// cache and an optional Hacker News ingester. Every user gets a fixed
// lifetime budget of search requests.
//
//	client, _ := semsearch.New(ctx, semsearch.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_, _ = client.IngestOnce(ctx)
//	results, err := client.Search(ctx, "alice", "rust release", nil)
//	if errors.Is(err, semsearch.ErrRateLimited) {
//	    // budget exhausted
//	}
//
// Without a store option the client keeps everything in process memory,
// and without WithEmbedder it uses a local hashing embedder.
package semsearch
