package fhicl

import (
	"regexp"
	"sort"
	"strings"
)

var (
	placeholderPattern = regexp.MustCompile(`%\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	settingPattern     = regexp.MustCompile(`^[#\s]*([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// segment is either literal text or a value placeholder.
type segment struct {
	text        string
	placeholder bool
}

// line is one parsed template line. Block markers are stripped from the
// segments; blockAt is the segment index the first marker occupied and
// markerIndent the whitespace that followed it.
type line struct {
	segments     []segment
	blocks       []string
	blockAt      int
	indent       string
	markerIndent string
	key          string
}

// Template is an immutable, parsed FHiCL template. It is safe for
// concurrent use.
type Template struct {
	name         string
	lines        []line
	declared     map[string]struct{}
	used         []string
	placeholders []string
	keys         map[string][]int
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

type parseConfig struct {
	blocks []string
}

// WithBlocks declares placeholder names that act as line-conditional block
// markers rather than values.
func WithBlocks(names ...string) ParseOption {
	return func(c *parseConfig) {
		c.blocks = append(c.blocks, names...)
	}
}

// Parse parses text into a Template.
func Parse(name, text string, opts ...ParseOption) (*Template, error) {
	if text == "" {
		return nil, invalidTemplate(name, "template text is empty")
	}

	cfg := &parseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	t := &Template{
		name:     name,
		declared: make(map[string]struct{}, len(cfg.blocks)),
		keys:     make(map[string][]int),
	}
	for _, b := range cfg.blocks {
		if !placeholderPattern.MatchString("%{" + b + "}") {
			return nil, invalidTemplate(name, "invalid block name "+b)
		}
		t.declared[b] = struct{}{}
	}

	usedBlocks := make(map[string]struct{})
	values := make(map[string]struct{})

	for i, raw := range strings.Split(text, "\n") {
		ln := t.parseLine(raw, usedBlocks, values)
		if ln.key != "" {
			t.keys[ln.key] = append(t.keys[ln.key], i)
		}
		t.lines = append(t.lines, ln)
	}

	t.used = sortedKeys(usedBlocks)
	t.placeholders = sortedKeys(values)
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for package-level
// templates.
func MustParse(name, text string, opts ...ParseOption) *Template {
	t, err := Parse(name, text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) parseLine(raw string, usedBlocks, values map[string]struct{}) line {
	ln := line{
		indent:  raw[:len(raw)-len(strings.TrimLeft(raw, " \t"))],
		blockAt: -1,
	}

	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			ln.segments = append(ln.segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	// stripped is the line without block markers, used for key detection.
	var stripped strings.Builder
	pos := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(raw, -1) {
		literal.WriteString(raw[pos:m[0]])
		stripped.WriteString(raw[pos:m[0]])
		name := raw[m[2]:m[3]]
		pos = m[1]

		if _, ok := t.declared[name]; ok {
			flush()
			if ln.blockAt < 0 {
				ln.blockAt = len(ln.segments)
			}
			ln.blocks = append(ln.blocks, name)
			usedBlocks[name] = struct{}{}
			continue
		}

		flush()
		ln.segments = append(ln.segments, segment{text: name, placeholder: true})
		stripped.WriteString(raw[m[0]:m[1]])
		values[name] = struct{}{}
	}
	literal.WriteString(raw[pos:])
	stripped.WriteString(raw[pos:])
	flush()

	if ln.blockAt >= 0 && ln.blockAt < len(ln.segments) && !ln.segments[ln.blockAt].placeholder {
		text := ln.segments[ln.blockAt].text
		ln.markerIndent = text[:len(text)-len(strings.TrimLeft(text, " \t"))]
	}

	if m := settingPattern.FindStringSubmatch(stripped.String()); m != nil {
		ln.key = m[1]
	}
	return ln
}

// Name returns the template name used in error messages.
func (t *Template) Name() string {
	return t.name
}

// Placeholders returns the sorted value placeholder names.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.placeholders...)
}

// Blocks returns the sorted names of declared blocks that appear in the
// template.
func (t *Template) Blocks() []string {
	return append([]string(nil), t.used...)
}

// HasBlock reports whether name was declared as a block.
func (t *Template) HasBlock(name string) bool {
	_, ok := t.declared[name]
	return ok
}

// Keys returns the sorted setting keys available for overrides.
func (t *Template) Keys() []string {
	keys := make([]string, 0, len(t.keys))
	for k := range t.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasKey reports whether a default-setting line exists for key.
func (t *Template) HasKey(key string) bool {
	return len(t.keys[key]) > 0
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
