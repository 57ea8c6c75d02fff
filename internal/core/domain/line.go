package domain

import "strings"

// LineKey identifies a line within a cart, wishlist or order.
type LineKey struct {
	ProductID int64
	Color     string
	Size      Size
}

func NewLineKey(productID int64, color string, size Size) LineKey {
	return LineKey{ProductID: productID, Color: normalizeColor(color), Size: size}
}

func (k LineKey) Validate() error {
	if k.ProductID <= 0 || k.Color == "" || !k.Size.Valid() {
		return ErrInvalidVariant
	}
	return nil
}

// Colors arrive as hex strings from the shop UI; "#ABCDEF" and "#abcdef"
// are the same variant.
func normalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

type keyed interface {
	Key() LineKey
}

// LineSet is an insertion-ordered collection holding at most one line per key.
type LineSet[L keyed] struct {
	keys  []LineKey
	lines map[LineKey]L
}

func (s *LineSet[L]) Get(key LineKey) (L, bool) {
	l, ok := s.lines[key]
	return l, ok
}

// Put inserts line or replaces the line with the same key in place.
func (s *LineSet[L]) Put(line L) {
	if s.lines == nil {
		s.lines = make(map[LineKey]L)
	}
	key := line.Key()
	if _, ok := s.lines[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.lines[key] = line
}

func (s *LineSet[L]) Delete(key LineKey) bool {
	if _, ok := s.lines[key]; !ok {
		return false
	}
	delete(s.lines, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

func (s *LineSet[L]) Len() int {
	return len(s.keys)
}

// All returns the lines in insertion order. The slice is a copy.
func (s *LineSet[L]) All() []L {
	out := make([]L, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.lines[k])
	}
	return out
}

func (s *LineSet[L]) Reset() {
	s.keys = nil
	s.lines = nil
}
