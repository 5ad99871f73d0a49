// internal/deck/deck.go
package deck

import (
	"errors"
	"math/rand"
	"time"

	"github.com/parlorgames/tabooo/internal/models"
)

// ErrEmptyDeck is returned when Load is called with no cards. An empty deck is
// a startup configuration error; it is never a runtime condition.
var ErrEmptyDeck = errors.New("deck: no word cards loaded")

// Deck holds the full set of word cards for one server process. The card set
// is loaded once at startup and never mutated afterwards; draws only ever hand
// out indices, so callers keep their own exclusion bookkeeping.
type Deck struct {
	cards []models.WordCard
	rng   *rand.Rand
}

// New returns an empty deck with a time-seeded random source.
func New() *Deck {
	return &Deck{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Load replaces the full card set. Called once at startup from the word
// loader.
func (d *Deck) Load(cards []models.WordCard) error {
	if len(cards) == 0 {
		return ErrEmptyDeck
	}
	d.cards = cards
	return nil
}

// Size returns the number of loaded cards.
func (d *Deck) Size() int {
	return len(d.cards)
}

// Card returns a copy of the card at index i.
func (d *Deck) Card(i int) models.WordCard {
	c := d.cards[i]
	taboo := make([]string, len(c.TabooWords))
	copy(taboo, c.TabooWords)
	c.TabooWords = taboo
	return c
}

// Draw returns a uniformly random card index not present in used. The caller
// must recycle its exclusion set before it covers the whole deck; the game
// state resets it once it grows within one slot of the deck size, so at least
// one index is always free here.
func (d *Deck) Draw(used []int) int {
	for {
		i := d.rng.Intn(len(d.cards))
		if !contains(used, i) {
			return i
		}
	}
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
