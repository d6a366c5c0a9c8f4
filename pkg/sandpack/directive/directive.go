// Package directive reads the visibility override a source file may carry
// in its leading comment, such as "// sandpack:hidden" or
// "<!-- sandpack:visible -->".
package directive

import (
	"path"
	"regexp"
	"strings"
)

// CommentStyle identifies which leading comment forms are recognized for a file.
type CommentStyle int

// Comment styles by extension family.
const (
	// StyleNone means the file never carries a directive.
	StyleNone CommentStyle = iota

	// StyleScript accepts "//" line comments and "/* */" block comments.
	StyleScript

	// StyleBlock accepts "/* */" block comments only.
	StyleBlock

	// StyleMarkup accepts "<!-- -->" comments only.
	StyleMarkup
)

// String returns the name of the comment style.
func (s CommentStyle) String() string {
	switch s {
	case StyleScript:
		return "script"
	case StyleBlock:
		return "block"
	case StyleMarkup:
		return "markup"
	default:
		return "none"
	}
}

var styles = map[string]CommentStyle{
	".js":   StyleScript,
	".jsx":  StyleScript,
	".ts":   StyleScript,
	".tsx":  StyleScript,
	".json": StyleScript,
	".md":   StyleScript,
	".txt":  StyleScript,
	".css":  StyleBlock,
	".html": StyleMarkup,
}

// StyleFor returns the comment style for the extension of relPath.
// The extension is matched case-insensitively.
func StyleFor(relPath string) CommentStyle {
	return styles[strings.ToLower(path.Ext(relPath))]
}

// jsSpace lists the characters JavaScript treats as whitespace in \s and
// String.prototype.trim. U+0085 is not among them.
const jsSpace = "\t\n\v\f\r \u00a0\u1680\u2000\u2001\u2002\u2003\u2004\u2005\u2006" +
	"\u2007\u2008\u2009\u200a\u2028\u2029\u202f\u205f\u3000\ufeff"

const ws = `[\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

// pattern finds the first directive anywhere in the comment text. Keywords
// fold ASCII case only, so "viſible" (long s) is not a keyword.
var pattern = regexp.MustCompile(`(?:@?` + fold("sandpack") + `:)?` + ws + `*(` + fold("hidden") + `|` + fold("visible") + `)` +
	ws + `*(?::|=)?` + ws + `*(` + fold("true") + `|` + fold("false") + `)?`)

// fold returns a pattern matching word in any ASCII letter case.
func fold(word string) string {
	var b strings.Builder
	for _, r := range word {
		b.WriteString("[" + string(r) + strings.ToUpper(string(r)) + "]")
	}
	return b.String()
}

const bom = "\ufeff"

// Parse reports the explicit hidden value declared by the leading comment of
// raw. ok is false when the file has no recognized comment or the comment
// holds no directive.
func Parse(relPath, raw string) (hidden bool, ok bool) {
	text, found := Comment(StyleFor(relPath), raw)
	if !found {
		return false, false
	}
	return Decide(text)
}

// Comment extracts the trimmed text of the first comment of raw, if raw
// starts with a comment of the given style. A leading byte order mark and
// leading whitespace are skipped. An unclosed block comment runs to the end
// of raw.
func Comment(style CommentStyle, raw string) (string, bool) {
	src := strings.TrimLeftFunc(strings.TrimPrefix(raw, bom), isSpace)

	switch style {
	case StyleScript:
		if rest, ok := strings.CutPrefix(src, "//"); ok {
			line, _, _ := strings.Cut(rest, "\n")
			return trim(line), true
		}
		return block(src, "/*", "*/")
	case StyleBlock:
		return block(src, "/*", "*/")
	case StyleMarkup:
		return block(src, "<!--", "-->")
	default:
		return "", false
	}
}

// Decide applies the directive grammar to comment text.
//
//	hidden, hidden:true, hidden=true  -> hidden
//	hidden:false                      -> visible
//	visible, visible:true             -> visible
//	visible:false                     -> hidden
//
// When both keywords appear the first one wins.
func Decide(text string) (hidden bool, ok bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return false, false
	}

	value := true
	if m[2] != "" {
		value = strings.EqualFold(m[2], "true")
	}

	if strings.EqualFold(m[1], "hidden") {
		return value, true
	}
	return !value, true
}

func block(src, open, closer string) (string, bool) {
	rest, ok := strings.CutPrefix(src, open)
	if !ok {
		return "", false
	}
	if end := strings.Index(rest, closer); end >= 0 {
		rest = rest[:end]
	}
	return trim(rest), true
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return strings.ContainsRune(jsSpace, r)
}
