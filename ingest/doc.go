// Package ingest writes loaded document chunks into the memory store
// through a bounded worker pool.
//
// The engine treats each chunk as an independent write: a failed chunk
// is recorded on the outcome with its page label and reason, and the
// rest of the batch proceeds. Ingest blocks until every scheduled chunk
// has settled, so outcomes carry complete accounting no matter what
// order the workers finish in.
package ingest
