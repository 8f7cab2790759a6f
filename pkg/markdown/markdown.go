// Package markdown escapes text for Telegram's MarkdownV2 parse mode.
package markdown

import "strings"

// MaxBodyLength is the number of characters kept by TrimBody.
const MaxBodyLength = 2048

// Ellipsis is appended to truncated bodies. It is literal punctuation and
// is never passed through Escape.
const Ellipsis = "..."

var (
	textEscaper = strings.NewReplacer(
		`_`, `\_`,
		`*`, `\*`,
		`[`, `\[`,
		`]`, `\]`,
		`(`, `\(`,
		`)`, `\)`,
		`~`, `\~`,
		"`", "\\`",
		`>`, `\>`,
		`#`, `\#`,
		`+`, `\+`,
		`-`, `\-`,
		`=`, `\=`,
		`|`, `\|`,
		`{`, `\{`,
		`}`, `\}`,
		`.`, `\.`,
		`!`, `\!`,
	)

	urlEscaper = strings.NewReplacer(
		`)`, `\)`,
		`\`, `\\`,
	)
)

// Escape prefixes every reserved MarkdownV2 character with a backslash.
// Existing backslashes are left alone, so escaping twice is not a no-op.
func Escape(text string) string {
	return textEscaper.Replace(text)
}

// EscapeURL escapes the two characters MarkdownV2 requires inside a link
// target: ')' and '\'.
func EscapeURL(url string) string {
	return urlEscaper.Replace(url)
}

// TrimBody caps text at MaxBodyLength characters and appends Ellipsis when
// anything was cut.
func TrimBody(text string) string {
	return Truncate(text, MaxBodyLength)
}

// Truncate keeps the first limit characters of text.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + Ellipsis
}

// ShortSHA returns the first seven characters of a commit id.
func ShortSHA(id string) string {
	if len(id) <= 7 {
		return id
	}
	return id[:7]
}
