// Package html extracts readable text from HTML plan sheets, dropping tags,
// scripts and styles and decoding entities.
package html
