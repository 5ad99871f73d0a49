// internal/models/word.go
package models

// TabooWordCount is the number of forbidden words printed on each card.
const TabooWordCount = 5

// WordCard is one guessable word plus its forbidden words. Cards are immutable
// once loaded; the game state records a copy of the current card rather than a
// reference into the deck.
type WordCard struct {
	GuessWord  string   `json:"guess_word"`
	TabooWords []string `json:"taboo_words"`
}
