// Package notifications delivers workflow events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when notifications are disabled. Each
// event family (fetch, clip, publish, queue, errors) can be toggled
// independently so stage handlers can emit events unconditionally.
//
// Extend this package if you need alternative transports; all workflow code
// depends only on the simple Service interface.
package notifications
