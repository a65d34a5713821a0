package study

import "github.com/nhle/smartnote/internal/model"

// Deck cycles through flashcards. Moving to another card always shows its
// front first.
type Deck struct {
	cards   []model.Flashcard
	index   int
	flipped bool
}

// NewDeck copies cards so marking them mastered does not alias the caller.
func NewDeck(cards []model.Flashcard) *Deck {
	c := make([]model.Flashcard, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

func (d *Deck) Len() int      { return len(d.cards) }
func (d *Deck) Empty() bool   { return len(d.cards) == 0 }
func (d *Deck) Index() int    { return d.index }
func (d *Deck) Flipped() bool { return d.flipped }

// Cards returns the deck including mastery flags.
func (d *Deck) Cards() []model.Flashcard { return d.cards }

// Current returns the card on top.
func (d *Deck) Current() (model.Flashcard, bool) {
	if d.Empty() {
		return model.Flashcard{}, false
	}
	return d.cards[d.index], true
}

// Flip turns the current card over.
func (d *Deck) Flip() {
	if !d.Empty() {
		d.flipped = !d.flipped
	}
}

// Next moves to the following card, wrapping after the last.
func (d *Deck) Next() {
	if d.Empty() {
		return
	}
	d.flipped = false
	d.index = (d.index + 1) % len(d.cards)
}

// Prev moves to the previous card, wrapping before the first.
func (d *Deck) Prev() {
	if d.Empty() {
		return
	}
	d.flipped = false
	d.index = (d.index - 1 + len(d.cards)) % len(d.cards)
}

// SetMastered records whether the current card is known.
func (d *Deck) SetMastered(v bool) {
	if !d.Empty() {
		d.cards[d.index].Mastered = v
	}
}

// Remaining counts cards not yet mastered.
func (d *Deck) Remaining() int {
	n := 0
	for _, c := range d.cards {
		if !c.Mastered {
			n++
		}
	}
	return n
}
