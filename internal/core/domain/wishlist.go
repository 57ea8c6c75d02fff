package domain

type WishlistLine struct {
	ItemID  int64
	Product Product
	Color   string
	Size    Size
}

func (l WishlistLine) Key() LineKey {
	return NewLineKey(l.Product.ID, l.Color, l.Size)
}

// Wishlist is the quantity-less sibling of Cart.
type Wishlist struct {
	lines LineSet[WishlistLine]
}

func NewWishlist() *Wishlist {
	return &Wishlist{}
}

func RestoreWishlist(lines []WishlistLine) *Wishlist {
	w := NewWishlist()
	for _, l := range lines {
		l.Color = normalizeColor(l.Color)
		w.lines.Put(l)
	}
	return w
}

// Add reports whether the variant was new. Adding a present variant is a no-op.
func (w *Wishlist) Add(line WishlistLine) (bool, error) {
	line.Color = normalizeColor(line.Color)
	key := line.Key()
	if err := key.Validate(); err != nil {
		return false, err
	}
	if _, ok := w.lines.Get(key); ok {
		return false, nil
	}
	w.lines.Put(line)
	return true, nil
}

func (w *Wishlist) Remove(key LineKey) {
	w.lines.Delete(NewLineKey(key.ProductID, key.Color, key.Size))
}

func (w *Wishlist) Line(key LineKey) (WishlistLine, bool) {
	return w.lines.Get(NewLineKey(key.ProductID, key.Color, key.Size))
}

func (w *Wishlist) Lines() []WishlistLine {
	return w.lines.All()
}

func (w *Wishlist) Len() int {
	return w.lines.Len()
}
