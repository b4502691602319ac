package crawler

import (
	"strings"
	"unicode/utf8"

	"github.com/nao1215/sitegrep/internal/model"
)

// ContextRadius is the number of runes kept on each side of a match.
const ContextRadius = 64

// ExtractContext finds the first occurrence of search in text and returns
// the window of up to ContextRadius runes on either side of it.
//
// Matching is literal and case-sensitive. The window is clipped to the
// bounds of text, so it is at most 2*ContextRadius+len(search) runes long.
// The boolean is false when search does not occur in text.
func ExtractContext(text, search string) (model.SearchContext, bool) {
	idx := strings.Index(text, search)
	if idx < 0 {
		return model.SearchContext{}, false
	}

	runes := []rune(text)
	at := utf8.RuneCountInString(text[:idx])
	searchLen := utf8.RuneCountInString(search)

	start := max(0, at-ContextRadius)
	end := min(len(runes), at+ContextRadius+searchLen)

	return model.SearchContext{
		Start: start,
		End:   end,
		Text:  string(runes[start:end]),
	}, true
}
