// Package chat runs grounded conversations over the memory store.
//
// A conversation turn is two linear stages. Retrieval searches the
// tenant's memory for the latest user query and formats the hits into a
// context block; retrieval is advisory and degrades to an empty block on
// failure. Generation folds that block into the system instruction and
// sends the full message sequence to the chat model.
//
// After a successful turn the exchange is written back into memory with
// source=chat tags, so documents and past conversations share one
// retrieval space.
package chat
