package identity

// Key is the canonical identity of a guest record.
type Key struct {
	Email string
	Name  string
}

// KeyOf builds the key for a name/email pair.
func KeyOf(name, email string) Key {
	return Key{Email: EmailKey(email), Name: NormalizeName(name)}
}

// Index finds records by email key first and by name key second.
type Index[T any] struct {
	items   []T
	byEmail map[string][]int
	byName  map[string][]int
}

// NewIndex indexes items in their given order. Earlier items win ties.
func NewIndex[T any](items []T, key func(T) Key) *Index[T] {
	ix := &Index[T]{
		items:   items,
		byEmail: make(map[string][]int),
		byName:  make(map[string][]int),
	}
	for i, item := range items {
		k := key(item)
		if k.Email != "" {
			ix.byEmail[k.Email] = append(ix.byEmail[k.Email], i)
		}
		if k.Name != "" {
			ix.byName[k.Name] = append(ix.byName[k.Name], i)
		}
	}
	return ix
}

// Find returns the position of the first record matching k.
func (ix *Index[T]) Find(k Key) (int, bool) {
	return ix.FindFunc(k, nil)
}

// FindFunc is Find restricted to positions accept approves. A nil accept
// approves everything.
func (ix *Index[T]) FindFunc(k Key, accept func(int) bool) (int, bool) {
	if k.Email != "" {
		for _, i := range ix.byEmail[k.Email] {
			if accept == nil || accept(i) {
				return i, true
			}
		}
	}
	if k.Name != "" {
		for _, i := range ix.byName[k.Name] {
			if accept == nil || accept(i) {
				return i, true
			}
		}
	}
	return -1, false
}

// Get returns the record at position i.
func (ix *Index[T]) Get(i int) T {
	return ix.items[i]
}

// Len returns the number of indexed records.
func (ix *Index[T]) Len() int {
	return len(ix.items)
}
