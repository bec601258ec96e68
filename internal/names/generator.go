// Package names produces the human-readable participant aliases handed out
// when someone joins a document without choosing a name.
package names

import (
	"fmt"
	"math/rand"
	"time"
)

// Two word pools plus one modifier pool. An alias is "<word>-<modifier>",
// e.g. "nutria-veloz" or "ciruela-curiosa".
var (
	poolAnimals = []string{
		"zorro", "nutria", "lince", "puma", "colibri", "ardilla", "tejon", "garza",
	}
	poolFruits = []string{
		"ciruela", "mango", "higo", "membrillo", "kiwi", "guayaba", "mora", "durazno",
	}
	modifiers = []string{
		"veloz", "curiosa", "serena", "astuta", "brillante", "errante",
	}
)

// Generator picks aliases from the fixed pools. Not safe for concurrent use;
// the collab manager calls it from within its own critical section.
type Generator struct {
	r *rand.Rand
}

func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded exists so tests can pin the pool picks.
func NewSeeded(seed int64) *Generator {
	return &Generator{r: rand.New(rand.NewSource(seed))}
}

// Generate returns an alias not present in existing. Uniqueness is only
// required within one document's author set, so collisions are resolved with
// an increasing numeric suffix rather than a re-roll.
func (g *Generator) Generate(existing map[string]struct{}) string {
	pool := poolAnimals
	if g.r.Intn(2) == 1 {
		pool = poolFruits
	}
	base := fmt.Sprintf("%s-%s", pool[g.r.Intn(len(pool))], modifiers[g.r.Intn(len(modifiers))])

	if _, taken := existing[base]; !taken {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
