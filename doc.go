// Package mdsite converts Markdown documents to HTML.
//
// # Quick Start
//
// Convert a file and get the HTML back:
//
//	html, err := mdsite.Convert(ctx, "notes.md", mdsite.DefaultOptions())
//	if errors.Is(err, mdsite.ErrFileAccess) {
//	    log.Fatal(err)
//	}
//
// Or write it next to the source as notes.html:
//
//	out, err := mdsite.ConvertFile(ctx, "notes.md", mdsite.DefaultOptions())
//
// # Extensions
//
// The default extension set is the "extra" bundle: tables, footnotes,
// definition lists, attribute lists, abbreviations, fenced code, and raw
// HTML blocks. Each extension takes its own configuration map:
//
//	conv, err := mdsite.NewConverter(mdsite.WithExtensions(mdsite.ExtensionConfigs{
//	    "extra":     {"footnotes": map[string]any{"id_prefix": "post-"}},
//	    "highlight": {"style": "github"},
//	    "meta":      {},
//	}))
//
// Opt-in extensions: strikethrough, typographer, heading_ids, highlight,
// meta, sidenotes, mark.
//
// # Output
//
// Options.Pretty (on in DefaultOptions) re-serializes the HTML one node per
// line with one space of indentation per level. Code blocks keep their
// exact content. Options.Standalone wraps the fragment in an HTML5 document.
//
// A Converter is immutable after construction and safe for concurrent use.
package mdsite
