// Package search runs the two-stage retrieval pipeline over an indexed
// verse corpus.
//
// A query first passes through context extraction (stripping scope phrasing
// such as a testament or book constraint) and intent classification, which
// routes it to keyword, semantic, or hybrid search. Semantic retrieval is
// two-stage: a permissive cosine-similarity candidate pass against the
// vector store, then re-ranking with keyword and verse-length signals.
//
// All query-path failures are reported inside the returned Result
// (Success=false, Error populated), never as a panic: one bad query must not
// take down a serving process. A SearchMonitor can observe each pipeline
// stage.
package search
