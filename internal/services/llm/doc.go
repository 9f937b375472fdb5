// Package llm talks to an OpenRouter-compatible chat completion endpoint to
// generate clip captions. Responses are requested as JSON and decoded
// defensively since providers vary in how strictly they honor that.
package llm
