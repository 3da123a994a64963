package app

import (
	"math/rand/v2"

	"github.com/bft-labs/herald/internal/domain"
)

// Membership reports whether a recipient was already messaged.
// ports.Ledger satisfies it.
type Membership interface {
	Contains(phone string) bool
}

// ShuffleFunc permutes n elements in place through swap.
type ShuffleFunc func(n int, swap func(i, j int))

// Feed turns the raw recipient list into the items of one run.
type Feed struct {
	shuffle ShuffleFunc
}

// NewFeed creates a feed. A nil shuffle uses math/rand/v2.
func NewFeed(shuffle ShuffleFunc) *Feed {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Feed{shuffle: shuffle}
}

// Prepare drops recipients already in the ledger, optionally shuffles the
// rest, and assigns templates round-robin by final position.
func (f *Feed) Prepare(recipients []domain.Recipient, profile domain.Profile, sent Membership, shuffle bool) ([]domain.Item, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	pending := make([]domain.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if sent != nil && sent.Contains(domain.NormalizePhone(r.Phone)) {
			continue
		}
		pending = append(pending, r)
	}

	if shuffle {
		f.shuffle(len(pending), func(i, j int) {
			pending[i], pending[j] = pending[j], pending[i]
		})
	}

	items := make([]domain.Item, len(pending))
	for i, r := range pending {
		items[i] = domain.Item{Recipient: r, Template: profile.TemplateAt(i)}
	}
	return items, nil
}
