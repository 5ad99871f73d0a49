// internal/words/words.go

// Package words reads the columnar word list the deck is loaded from at
// startup. The file format is fixed: a header row of
// guess_word,taboo_word1..taboo_word5 followed by one card per row.
package words

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parlorgames/tabooo/internal/models"
)

var expectedHeader = []string{
	"guess_word",
	"taboo_word1",
	"taboo_word2",
	"taboo_word3",
	"taboo_word4",
	"taboo_word5",
}

// LoadFile reads word cards from the CSV file at path.
func LoadFile(path string) ([]models.WordCard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads word cards from r. The header row is validated against the fixed
// column layout; any mismatch is a configuration error.
func Load(r io.Reader) ([]models.WordCard, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("words: read header: %w", err)
	}
	if len(header) != len(expectedHeader) {
		return nil, fmt.Errorf("words: expected %d columns, got %d", len(expectedHeader), len(header))
	}
	for i, col := range header {
		if strings.TrimSpace(col) != expectedHeader[i] {
			return nil, fmt.Errorf("words: unexpected header column %q, want %q", col, expectedHeader[i])
		}
	}

	var cards []models.WordCard
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("words: read row: %w", err)
		}
		card := models.WordCard{
			GuessWord:  strings.TrimSpace(row[0]),
			TabooWords: make([]string, 0, models.TabooWordCount),
		}
		for _, w := range row[1:] {
			card.TabooWords = append(card.TabooWords, strings.TrimSpace(w))
		}
		cards = append(cards, card)
	}
	return cards, nil
}
