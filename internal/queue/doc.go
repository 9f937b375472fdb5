// Package queue persists pipeline items in a local SQLite database.
//
// Every video moves through an ordered set of statuses (pending, fetching,
// fetched, clipping, clipped, captioning, captioned, publishing, completed)
// with failed and review as terminal parking states. The store exposes the
// operations the workflow manager and CLI need: enqueueing, claiming the next
// eligible item, heartbeats for crash recovery, and bulk maintenance.
package queue
