package matching

import "time"

// Item is one entry of either side of the pairing.
type Item struct {
	ID string
	// Tags is an ordered sequence; order changes the similarity score.
	Tags      []string
	CreatedAt time.Time
	// Owner identifies who the entry belongs to. Entries of the same owner
	// are never paired.
	Owner      string
	Affiliated bool
}

// Pair is a matched request and counterpart together with the pair fitness.
type Pair struct {
	Request     Item
	Counterpart Item
	Fitness     float64
}

// pad returns the items as pointers extended with nil placeholders up to n.
func pad(items []Item, n int) []*Item {
	padded := make([]*Item, n)
	for i := range items {
		padded[i] = &items[i]
	}
	return padded
}
