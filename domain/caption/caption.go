// Package caption provides caption text cleanup and model-free image
// feature analysis.
package caption

import (
	"regexp"
	"strings"
)

// specialTokens matches decoder control tokens that some serving backends
// leak into generated text, e.g. [SEP], <|endoftext|>, </s>.
var specialTokens = regexp.MustCompile(`\[[A-Z]+\]|<\|[^|]*\|>|</?s>|<pad>|<unk>`)

// Clean strips special tokens and surrounding whitespace from generated
// caption text. The result carries no leading or trailing whitespace and no
// internal double spaces left behind by token removal.
func Clean(raw string) string {
	text := specialTokens.ReplaceAllString(raw, "")
	text = strings.Join(strings.Fields(text), " ")
	return text
}
