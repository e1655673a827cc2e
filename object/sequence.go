package object

type listData struct {
	items []*Object
}

type tupleData struct {
	items []*Object
}

// List is a typed view over a list object. All mutators take their own
// counted reference on inserted items; Get returns borrowed references.
type List struct {
	d *listData
}

// List returns a view over a list object, or nil for any other kind.
func (o *Object) List() *List {
	if o == nil || o.Kind() != KindList {
		return nil
	}
	return &List{d: o.data.(*listData)}
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.d.items)
}

// Get returns the element at i as a borrowed reference.
func (l *List) Get(i int) *Object {
	return l.d.items[i]
}

// Append adds an element to the end of the list.
func (l *List) Append(item *Object) {
	l.d.items = append(l.d.items, item.IncRef())
}

// Tuple is a typed view over a fixed-arity tuple object. Set takes its own
// counted reference; Get returns borrowed references.
type Tuple struct {
	d *tupleData
}

// Tuple returns a view over a tuple object, or nil for any other kind.
func (o *Object) Tuple() *Tuple {
	if o == nil || o.Kind() != KindTuple {
		return nil
	}
	return &Tuple{d: o.data.(*tupleData)}
}

// Len returns the tuple's arity.
func (t *Tuple) Len() int {
	return len(t.d.items)
}

// Get returns the element at i as a borrowed reference, or nil for an
// unset slot.
func (t *Tuple) Get(i int) *Object {
	return t.d.items[i]
}

// Set fills slot i, releasing any previous occupant.
func (t *Tuple) Set(i int, item *Object) {
	prev := t.d.items[i]
	t.d.items[i] = item.IncRef()
	prev.DecRef()
}
