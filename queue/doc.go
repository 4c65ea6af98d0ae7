// Package queue is an in-process background job queue with polling.
//
// Jobs run on a bounded worker pool and their terminal outcomes are
// retained in memory for later polling. The CLI uses it to push large
// document ingestions off the interactive path. Jobs do not survive a
// process restart; durability is a deployment concern, not a library one.
package queue
