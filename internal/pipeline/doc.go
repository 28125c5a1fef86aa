// Package pipeline implements the Markdown-to-HTML conversion pipeline.
//
// Stages, in order:
//   - Markdown preprocessing (line endings, mark syntax, abbreviation definitions)
//   - Markdown to HTML via goldmark, configured from ExtensionConfigs
//   - tree passes on the rendered fragment (abbreviations, sidenotes,
//     relative reference rewriting)
//   - optional pretty printing of the final HTML
//
// CSSInjection prepares standalone documents for headless Chrome, which the
// build package uses to print the resume PDF.
package pipeline
