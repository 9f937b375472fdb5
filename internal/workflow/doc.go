// Package workflow coordinates the clip pipeline. A manager polls the queue,
// claims the oldest eligible item, and walks it through the fetch, clip,
// caption, and publish stages, persisting every transition so a restart can
// resume where it left off.
package workflow
