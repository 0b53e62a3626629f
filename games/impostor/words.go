package impostor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Word is a secret word and the theme the impostor is told instead.
type Word struct {
	Secret string `json:"word"`
	Theme  string `json:"theme"`
}

type Catalog []Word

func DefaultCatalog() Catalog {
	return Catalog{
		{Secret: "Telescope", Theme: "Scientific Instrument"},
		{Secret: "Elephant", Theme: "Animal"},
		{Secret: "Pizza", Theme: "Food"},
		{Secret: "Bicycle", Theme: "Vehicle"},
		{Secret: "Guitar", Theme: "Musical Instrument"},
		{Secret: "Mars", Theme: "Planet"},
		{Secret: "Chocolate", Theme: "Sweet"},
		{Secret: "Nurse", Theme: "Profession"},
		{Secret: "Soccer", Theme: "Sport"},
		{Secret: "The Matrix", Theme: "Movie"},
	}
}

// Pick returns the word at index i, which must come from Random.IntN(c.Len()).
func (c Catalog) Pick(i int) Word {
	return c[i]
}

func (c Catalog) Len() int {
	return len(c)
}

// ReadCatalog decodes a JSON array of {"word": ..., "theme": ...} objects.
func ReadCatalog(r io.Reader) (Catalog, error) {
	var words Catalog
	if err := json.NewDecoder(r).Decode(&words); err != nil {
		return nil, fmt.Errorf("decode word list: %w", err)
	}

	out := words[:0]
	for i, w := range words {
		w.Secret = strings.TrimSpace(w.Secret)
		w.Theme = strings.TrimSpace(w.Theme)
		if w.Secret == "" || w.Theme == "" {
			return nil, fmt.Errorf("word list entry %d: word and theme are required", i)
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, errors.New("word list is empty")
	}

	return out, nil
}

func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCatalog(f)
}
