package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Extension configuration errors.
var (
	ErrUnknownExtension       = errors.New("unknown extension")
	ErrInvalidExtensionConfig = errors.New("invalid extension config")
)

// ExtraBundle names the default extension bundle.
const ExtraBundle = "extra"

// ExtensionConfigs maps an extension name to its own configuration.
// An empty inner map selects the extension's defaults.
type ExtensionConfigs map[string]map[string]any

// DefaultExtensions returns the default configuration: the extra bundle with
// no overrides.
func DefaultExtensions() ExtensionConfigs {
	return ExtensionConfigs{ExtraBundle: {}}
}

// extraMembers are the extensions enabled by the extra bundle.
var extraMembers = []string{
	"abbr",
	"attr_list",
	"def_list",
	"fenced_code",
	"footnotes",
	"md_in_html",
	"tables",
}

// features records the post-processing passes an extension set enables.
type features struct {
	abbreviations bool
	sidenotes     bool
	marks         bool
	meta          bool
}

// builder accumulates goldmark options while extensions are applied.
type builder struct {
	extenders    []goldmark.Extender
	parserOpts   []parser.Option
	rendererOpts []renderer.Option
	features     features
}

// extensionSpec describes one extension: the config keys it accepts and how
// it wires itself into goldmark.
type extensionSpec struct {
	keys  []string
	apply func(b *builder, cfg map[string]any) error
}

var registry = map[string]extensionSpec{
	"tables": {
		apply: func(b *builder, _ map[string]any) error {
			b.extenders = append(b.extenders, extension.Table)
			return nil
		},
	},
	"fenced_code": {
		// Fenced code blocks are part of CommonMark.
		apply: func(*builder, map[string]any) error { return nil },
	},
	"footnotes": {
		keys:  []string{"id_prefix", "backlink_html"},
		apply: applyFootnotes,
	},
	"def_list": {
		apply: func(b *builder, _ map[string]any) error {
			b.extenders = append(b.extenders, extension.DefinitionList)
			return nil
		},
	},
	"attr_list": {
		apply: func(b *builder, _ map[string]any) error {
			b.parserOpts = append(b.parserOpts, parser.WithAttribute())
			return nil
		},
	},
	"abbr": {
		apply: func(b *builder, _ map[string]any) error {
			b.features.abbreviations = true
			return nil
		},
	},
	"md_in_html": {
		apply: func(b *builder, _ map[string]any) error {
			b.rendererOpts = append(b.rendererOpts, html.WithUnsafe())
			return nil
		},
	},
	"strikethrough": {
		apply: func(b *builder, _ map[string]any) error {
			b.extenders = append(b.extenders, extension.Strikethrough)
			return nil
		},
	},
	"typographer": {
		apply: func(b *builder, _ map[string]any) error {
			b.extenders = append(b.extenders, extension.Typographer)
			return nil
		},
	},
	"heading_ids": {
		apply: func(b *builder, _ map[string]any) error {
			b.parserOpts = append(b.parserOpts, parser.WithAutoHeadingID())
			return nil
		},
	},
	"highlight": {
		keys:  []string{"style", "classes", "line_numbers"},
		apply: applyHighlight,
	},
	"meta": {
		apply: func(b *builder, _ map[string]any) error {
			b.extenders = append(b.extenders, meta.Meta)
			b.features.meta = true
			return nil
		},
	},
	"sidenotes": {
		apply: func(b *builder, _ map[string]any) error {
			b.features.sidenotes = true
			return nil
		},
	},
	"mark": {
		apply: func(b *builder, _ map[string]any) error {
			b.features.marks = true
			return nil
		},
	},
}

// ExtensionNames lists every extension name accepted in ExtensionConfigs,
// including the extra bundle, sorted.
func ExtensionNames() []string {
	names := make([]string, 0, len(registry)+1)
	for name := range registry {
		names = append(names, name)
	}
	names = append(names, ExtraBundle)
	sort.Strings(names)
	return names
}

// build validates configs and resolves them into goldmark options.
// The extra bundle accepts its members' names as keys, each mapping to that
// member's own configuration.
func (configs ExtensionConfigs) build() (*builder, error) {
	resolved := make(map[string]map[string]any)

	if extra, ok := configs[ExtraBundle]; ok {
		for _, member := range extraMembers {
			resolved[member] = nil
		}
		for key, raw := range extra {
			if !slices.Contains(extraMembers, key) {
				return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalidExtensionConfig, ExtraBundle, key)
			}
			memberCfg, err := asConfigMap(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidExtensionConfig, ExtraBundle, key, err)
			}
			resolved[key] = memberCfg
		}
	}

	// Top-level entries win over the bundle's nested configuration.
	for name, cfg := range configs {
		if name == ExtraBundle {
			continue
		}
		if _, ok := registry[name]; !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownExtension, name, strings.Join(ExtensionNames(), ", "))
		}
		resolved[name] = cfg
	}

	// Apply in a stable order so goldmark sees the same option sequence on
	// every build.
	names := make([]string, 0, len(resolved))
	for name := range resolved {
		names = append(names, name)
	}
	sort.Strings(names)

	b := &builder{}
	for _, name := range names {
		spec := registry[name]
		cfg := resolved[name]
		for key := range cfg {
			if !slices.Contains(spec.keys, key) {
				return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalidExtensionConfig, name, key)
			}
		}
		if err := spec.apply(b, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidExtensionConfig, name, err)
		}
	}
	return b, nil
}

func applyFootnotes(b *builder, cfg map[string]any) error {
	var opts []extension.FootnoteOption

	prefix, err := stringOption(cfg, "id_prefix")
	if err != nil {
		return err
	}
	if prefix != "" {
		opts = append(opts, extension.WithFootnoteIDPrefix([]byte(prefix)))
	}

	backlink, err := stringOption(cfg, "backlink_html")
	if err != nil {
		return err
	}
	if backlink != "" {
		opts = append(opts, extension.WithFootnoteBacklinkHTML([]byte(backlink)))
	}

	b.extenders = append(b.extenders, extension.NewFootnote(opts...))
	return nil
}

func applyHighlight(b *builder, cfg map[string]any) error {
	style, err := stringOption(cfg, "style")
	if err != nil {
		return err
	}
	if style != "" {
		if _, ok := styles.Registry[strings.ToLower(style)]; !ok {
			return fmt.Errorf("unknown style %q", style)
		}
	}

	classes, err := boolOption(cfg, "classes", true)
	if err != nil {
		return err
	}
	lineNumbers, err := boolOption(cfg, "line_numbers", false)
	if err != nil {
		return err
	}

	opts := []highlighting.Option{
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(classes),
			chromahtml.WithLineNumbers(lineNumbers),
		),
	}
	if style != "" {
		opts = append(opts, highlighting.WithStyle(strings.ToLower(style)))
	}
	b.extenders = append(b.extenders, highlighting.NewHighlighting(opts...))
	return nil
}

// asConfigMap accepts the nested map shapes produced by YAML and JSON
// decoders.
func asConfigMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			out[key] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
}

func stringOption(cfg map[string]any, key string) (string, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

func boolOption(cfg map[string]any, key string, fallback bool) (bool, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected bool, got %T", key, v)
	}
	return b, nil
}
