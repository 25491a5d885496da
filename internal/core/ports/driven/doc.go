// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - BlobStore: Keeps uploaded plan documents and issues signed read URLs
//   - PlanStore: Segment/request persistence and top-N similarity queries
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Proposal and chat generation
//   - TextExtractor, ExtractorRegistry: Per-page text extraction
//   - Segmenter: Splits text into embeddable segments
//   - ConfigStore, PromptStore: Application configuration and prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
