package dictionary

import (
	"strings"

	"dict-manager/core/utils"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// ipaReadingField is the index of the katakana reading in IPA features.
const ipaReadingField = 7

// ReadingSuggester proposes a hiragana reading for a word.
type ReadingSuggester struct {
	t *tokenizer.Tokenizer
}

// NewReadingSuggester loads the IPA dictionary.
func NewReadingSuggester() (*ReadingSuggester, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &ReadingSuggester{t: t}, nil
}

// Suggest returns the hiragana reading of word. Tokens the dictionary does
// not know contribute their surface form.
func (s *ReadingSuggester) Suggest(word string) string {
	var b strings.Builder
	for _, token := range s.t.Tokenize(strings.TrimSpace(word)) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		reading := token.Surface
		if features := token.Features(); len(features) > ipaReadingField && features[ipaReadingField] != "*" {
			reading = features[ipaReadingField]
		}
		b.WriteString(reading)
	}
	return utils.ToHiragana(b.String())
}
