// Package assets provides the site stylesheet and page templates.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in theme)
//	    ├── FilesystemLoader  - loads from a site's own asset directory
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver resolves each file on its own, so a site can override the
// base layout alone and keep the built-in page templates, or the reverse.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    ├── base.html       # Layout, calls {{template "content" .}}
//	    └── {page}.html     # Defines "content"
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
