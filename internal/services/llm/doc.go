// Package llm provides a language identification backend that asks an
// OpenAI-compatible chat completion endpoint.
//
// Requests are pinned to a fixed seed and near-zero temperature so repeated
// runs over the same excerpt agree, and the model is asked for a JSON object
// carrying an ISO 639-1 code and a confidence score. Responses wrapped in code
// fences or prose are tolerated.
//
// The Client satisfies langdetect.Model, langdetect.Seeder and
// langdetect.Preparer; Prepare sends one probe request so an unreachable
// endpoint fails the batch before any document is queued.
package llm
