// Package normalisers holds the text extractors for uploaded plan
// documents and the registry that picks one per document.
//
// Extractors live in sub-packages (pdf, docx, plaintext) and are
// registered with a Registry at startup.
package normalisers
