// Package overlay tracks which items of the shopping list on screen the user
// has checked off. The overlay never reaches the server.
package overlay

import "github.com/five82/despensa/internal/api"

// Overlay is the purchased set for one list. The zero value is unbound and
// reports nothing as purchased. It is not safe for concurrent use; the UI owns
// it.
type Overlay struct {
	listaID    int64
	generation uint64
	bound      bool
	purchased  map[int64]struct{}
}

// New returns an unbound overlay.
func New() *Overlay {
	return &Overlay{}
}

// Init binds the overlay to l and seeds it from the items' comprado flags,
// discarding any previous marks.
func (o *Overlay) Init(l api.Lista) {
	o.listaID = l.ID
	o.bound = true
	o.purchased = make(map[int64]struct{}, len(l.Itens))
	for _, item := range l.Itens {
		if item.Comprado {
			o.purchased[item.Produto.ID] = struct{}{}
		}
	}
}

// Observe is called whenever the list on screen is (re)rendered. The overlay
// re-seeds from l when l is a different list or generation differs from the
// one last seen, and reports whether it did. Otherwise marks for products no
// longer on the list are dropped. That pruning is the one change to marks that
// Toggle does not make: a removed item cannot be checked off, and a product
// re-added later starts unchecked.
func (o *Overlay) Observe(l api.Lista, generation uint64) bool {
	if !o.bound || o.listaID != l.ID || o.generation != generation {
		o.Init(l)
		o.generation = generation
		return true
	}
	for id := range o.purchased {
		if _, ok := l.Item(id); !ok {
			delete(o.purchased, id)
		}
	}
	return false
}

// Toggle flips produtoID and returns its new state.
func (o *Overlay) Toggle(produtoID int64) bool {
	if o.purchased == nil {
		o.purchased = make(map[int64]struct{})
	}
	if _, ok := o.purchased[produtoID]; ok {
		delete(o.purchased, produtoID)
		return false
	}
	o.purchased[produtoID] = struct{}{}
	return true
}

// IsPurchased reports whether produtoID is checked off.
func (o *Overlay) IsPurchased(produtoID int64) bool {
	_, ok := o.purchased[produtoID]
	return ok
}

// Count returns how many products are checked off.
func (o *Overlay) Count() int {
	return len(o.purchased)
}

// Total sums quantidade × preco over the checked-off items of l. Items
// without a price count as zero.
func (o *Overlay) Total(l api.Lista) float64 {
	var total float64
	for _, item := range l.Itens {
		if o.IsPurchased(item.Produto.ID) {
			total += item.LineTotal()
		}
	}
	return total
}

// Subtotal is the value of the whole list, checked off or not.
func (o *Overlay) Subtotal(l api.Lista) float64 {
	return l.Total()
}

// ListaID returns the bound list.
func (o *Overlay) ListaID() (int64, bool) {
	return o.listaID, o.bound
}

// Reset unbinds the overlay. The next Observe re-seeds it.
func (o *Overlay) Reset() {
	*o = Overlay{}
}
