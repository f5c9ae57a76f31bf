// Package descriptor parses the native package-descriptor grammar.
//
// A descriptor lists a package's description, dependencies (uses), files,
// main configurations, accepted flags, and platform-conditional library and
// link directives:
//
//	description "Core utilities\377B28,127,200";
//	uses plugin/z, Painter;
//	uses(WIN32) Oracle;
//	file
//		Core.h,
//		Core.cpp;
//	mainconfig "" = "GUI";
//	library(WIN32) "ws2_32";
//
// The parser is tolerant by contract: it never fails, malformed or missing
// input yields an all-empty record, and unrecognized lines are preserved in
// UnparsedLines rather than dropped. Multi-line directives accumulate until
// a terminating semicolon. Unquoted fully upper-case tokens are treated as
// condition flags and never become dependency names.
package descriptor

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// RGB is the optional descriptor color, encoded in the description text as a
// trailing \377B<r>,<g>,<b> escape.
type RGB struct {
	R, G, B uint8
}

// Use is one dependency declaration, optionally guarded by a condition.
type Use struct {
	Package   string
	Condition string
}

// File is one file entry with its modifiers.
type File struct {
	Path      string
	Options   string
	ReadOnly  bool
	Separator bool
	Highlight string
	Charset   string
}

// MainConfig is one main-configuration (name, param) pair. Name may be the
// empty string, which is the common case for the default configuration.
type MainConfig struct {
	Name  string
	Param string
}

// CondValue is a condition-keyed directive value, used for library,
// static_library, and link directives.
type CondValue struct {
	Condition string
	Value     string
}

// Record is the structured result of parsing one descriptor.
type Record struct {
	RawDescription  string
	Description     string
	Color           *RGB
	Uses            []Use
	Files           []File
	MainConfigs     []MainConfig
	AcceptFlags     []string
	Libraries       []CondValue
	StaticLibraries []CondValue
	Links           []CondValue
	UnparsedLines   []string
}

// DependencyNames returns the packages this descriptor uses whose condition
// is empty or satisfied by the active flags.
func (r *Record) DependencyNames(activeFlags []string) []string {
	var names []string
	for _, u := range r.Uses {
		if u.Condition == "" || Evaluate(u.Condition, activeFlags) {
			names = append(names, u.Package)
		}
	}
	return names
}

var (
	descriptionRe = regexp.MustCompile(`^description\s+"([^"]*)"`)
	colorRe       = regexp.MustCompile(`^B(\d+),(\d+),(\d+)$`)
	conditionalRe = regexp.MustCompile(`^\(([^)]+)\)\s+(.+)$`)
	quotedRe      = regexp.MustCompile(`"([^"]+)"`)
	mainConfigRe  = regexp.MustCompile(`"([^"]*)"\s*=\s*"([^"]*)"`)
	libraryRe     = regexp.MustCompile(`^library\(([^)]+)\)\s+(?:"([^"]+)"|(\w+))`)
	staticLibRe   = regexp.MustCompile(`^static_library\(([^)]+)\)\s+(\w+)`)
	linkRe        = regexp.MustCompile(`^link\(([^)]+)\)\s+(.+?);`)
	fileQuotedRe  = regexp.MustCompile(`^"([^"]+)"`)
	fileBareRe    = regexp.MustCompile(`^([^\s,;]+)`)
	optionsRe     = regexp.MustCompile(`options\(([^)]+)\)`)
	highlightRe   = regexp.MustCompile(`highlight\s+(\w+)`)
	charsetRe     = regexp.MustCompile(`charset\s+"([^"]+)"`)
)

// ParseFile reads and parses the descriptor at path. Read failures return an
// error so the caller can decide to skip; parse trouble never does.
func ParseFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// Parse parses descriptor content. It never fails: empty input yields an
// all-empty record and unrecognized lines land in UnparsedLines.
func Parse(content string) *Record {
	p := &parser{lines: strings.Split(content, "\n"), rec: &Record{}}
	p.run()
	return p.rec
}

type parser struct {
	lines []string
	pos   int
	rec   *Record
}

func (p *parser) run() {
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			p.pos++
		case strings.HasPrefix(line, "description"):
			p.parseDescription(line)
		case strings.HasPrefix(line, "uses"):
			p.parseUses()
		case strings.HasPrefix(line, "file"):
			p.parseFiles(line)
		case strings.HasPrefix(line, "mainconfig"):
			p.parseMainConfig()
		case strings.HasPrefix(line, "acceptflags"):
			p.parseAcceptFlags()
		case strings.HasPrefix(line, "library("):
			p.parseCondDirective(line, libraryRe, &p.rec.Libraries)
		case strings.HasPrefix(line, "static_library("):
			p.parseCondDirective(line, staticLibRe, &p.rec.StaticLibraries)
		case strings.HasPrefix(line, "link("):
			p.parseCondDirective(line, linkRe, &p.rec.Links)
		default:
			p.rec.UnparsedLines = append(p.rec.UnparsedLines, line)
			p.pos++
		}
	}
}

// accumulate joins lines starting at the current position until one contains
// a semicolon, advancing the parser past the terminating line.
func (p *parser) accumulate() string {
	var sb strings.Builder
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		sb.WriteString(" ")
		sb.WriteString(line)
		p.pos++
		if strings.Contains(line, ";") {
			break
		}
	}
	return sb.String()
}

func (p *parser) parseDescription(line string) {
	m := descriptionRe.FindStringSubmatch(line)
	if m == nil {
		p.rec.UnparsedLines = append(p.rec.UnparsedLines, line)
		p.pos++
		return
	}
	p.rec.RawDescription = m[1]
	p.rec.Description, p.rec.Color = splitDescription(m[1])
	p.pos++
}

// splitDescription separates the trailing \377B<r>,<g>,<b> color escape from
// the description text, if present. Descriptor writers emit the escape either
// as the literal four-character "\377" sequence or as the raw 0xFF byte; both
// forms are accepted.
func splitDescription(raw string) (string, *RGB) {
	cut, rest := -1, ""
	if i := strings.LastIndex(raw, `\377B`); i >= 0 {
		cut, rest = i, raw[i+4:]
	} else if i := strings.LastIndexByte(raw, 0xFF); i >= 0 && i+1 < len(raw) && raw[i+1] == 'B' {
		cut, rest = i, raw[i+1:]
	}
	if cut < 0 {
		return raw, nil
	}
	sub := colorRe.FindStringSubmatch(rest)
	if sub == nil {
		return raw, nil
	}
	r, _ := strconv.Atoi(sub[1])
	g, _ := strconv.Atoi(sub[2])
	b, _ := strconv.Atoi(sub[3])
	return raw[:cut], &RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
}

func (p *parser) parseUses() {
	content := p.accumulate()
	content = strings.Replace(content, "uses", "", 1)
	content = strings.ReplaceAll(content, ";", "")
	content = strings.TrimSpace(content)

	if m := conditionalRe.FindStringSubmatch(content); m != nil {
		cond := strings.TrimSpace(m[1])
		for _, name := range packageNames(m[2]) {
			p.rec.Uses = append(p.rec.Uses, Use{Package: name, Condition: cond})
		}
		return
	}

	for _, m := range quotedRe.FindAllStringSubmatch(content, -1) {
		p.rec.Uses = append(p.rec.Uses, Use{Package: m[1]})
	}
	unquoted := quotedRe.ReplaceAllString(content, "")
	for _, name := range packageNames(unquoted) {
		p.rec.Uses = append(p.rec.Uses, Use{Package: name})
	}
}

// packageNames extracts dependency names from a comma/space separated list.
// Fully upper-case tokens are condition flags, not package names, and
// backslash-qualified paths like plugin\z normalize to forward slashes.
func packageNames(text string) []string {
	var names []string
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "|" || tok == "&" || tok == "!" || tok == "(" || tok == ")" {
			continue
		}
		if isUpperToken(tok) {
			continue
		}
		names = append(names, strings.ReplaceAll(tok, "\\", "/"))
	}
	return names
}

// isUpperToken reports whether the token consists only of upper-case
// letters, digits, and underscores, with at least one letter.
func isUpperToken(tok string) bool {
	hasLetter := false
	for _, r := range tok {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9' || r == '_':
		default:
			return false
		}
	}
	return hasLetter
}

func (p *parser) parseFiles(line string) {
	if strings.Contains(line, ";") {
		// Single-line form: file "a.cpp", "b.h";
		for _, m := range quotedRe.FindAllStringSubmatch(line, -1) {
			p.rec.Files = append(p.rec.Files, File{Path: m[1]})
		}
		p.pos++
		return
	}

	p.pos++ // skip the "file" keyword line
	for p.pos < len(p.lines) {
		entry := strings.TrimSpace(p.lines[p.pos])
		if entry == "" || entry == ";" {
			break
		}
		if f, ok := parseFileEntry(entry); ok {
			p.rec.Files = append(p.rec.Files, f)
		}
		if strings.Contains(entry, ";") {
			break
		}
		p.pos++
	}
	p.pos++
}

func parseFileEntry(line string) (File, bool) {
	var f File
	if m := fileQuotedRe.FindStringSubmatch(line); m != nil {
		f.Path = m[1]
	} else if m := fileBareRe.FindStringSubmatch(line); m != nil {
		f.Path = m[1]
	} else {
		return f, false
	}

	if m := optionsRe.FindStringSubmatch(line); m != nil {
		f.Options = m[1]
	}
	f.ReadOnly = strings.Contains(line, "readonly")
	f.Separator = strings.Contains(line, "separator")
	if m := highlightRe.FindStringSubmatch(line); m != nil {
		f.Highlight = m[1]
	}
	if m := charsetRe.FindStringSubmatch(line); m != nil {
		f.Charset = m[1]
	}
	return f, true
}

func (p *parser) parseMainConfig() {
	content := p.accumulate()
	for _, m := range mainConfigRe.FindAllStringSubmatch(content, -1) {
		p.rec.MainConfigs = append(p.rec.MainConfigs, MainConfig{Name: m[1], Param: m[2]})
	}
}

func (p *parser) parseAcceptFlags() {
	content := p.accumulate()
	content = strings.Replace(content, "acceptflags", "", 1)
	content = strings.ReplaceAll(content, ";", "")
	for _, tok := range strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		if tok = strings.TrimSpace(tok); tok != "" {
			p.rec.AcceptFlags = append(p.rec.AcceptFlags, tok)
		}
	}
}

func (p *parser) parseCondDirective(line string, re *regexp.Regexp, dst *[]CondValue) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		p.rec.UnparsedLines = append(p.rec.UnparsedLines, line)
		p.pos++
		return
	}
	value := m[2]
	if len(m) > 3 && value == "" {
		value = m[3]
	}
	*dst = append(*dst, CondValue{Condition: m[1], Value: value})
	p.pos++
}
