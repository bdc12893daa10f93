// Copyright 2026 cinerec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package content

import (
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"golang.org/x/text/unicode/norm"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Tokenizer splits soups into lower-cased terms of at least two word characters.
type Tokenizer struct {
	language  string
	stopWords mapset.Set[string]
}

// NewTokenizer creates a tokenizer removing the stop words of a language. Supported
// languages are "english", "portuguese" and "none".
func NewTokenizer(language string) (*Tokenizer, error) {
	words, ok := stopWordLists[language]
	if !ok {
		return nil, errors.NotSupportedf("stop words for language %q", language)
	}
	stopWords := mapset.NewThreadUnsafeSet[string]()
	for _, word := range words {
		stopWords.Add(norm.NFC.String(word))
	}
	return &Tokenizer{language: language, stopWords: stopWords}, nil
}

func (t *Tokenizer) Language() string {
	return t.language
}

func (t *Tokenizer) Tokenize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	tokens := tokenPattern.FindAllString(text, -1)
	filtered := tokens[:0]
	for _, token := range tokens {
		if !t.stopWords.Contains(token) {
			filtered = append(filtered, token)
		}
	}
	return filtered
}
