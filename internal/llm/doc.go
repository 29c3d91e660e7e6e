// Package llm implements the AI classification fallback on top of
// hosted LLM APIs. The engine only sees the narrow AIClassifier
// interface; provider selection, caching, rate limiting and retries all
// live here.
package llm
