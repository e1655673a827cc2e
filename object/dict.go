package object

import "fmt"

// dictKey is the by-value hash key for the hashable kinds. Two key objects
// compare equal exactly when their kind and payload match; integer and
// float keys are distinct even when numerically equal.
type dictKey struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

type dictEntry struct {
	key   *Object
	value *Object
}

// dictData keeps insertion order: entries holds the items, index maps the
// value-hash to an entry position.
type dictData struct {
	entries []*dictEntry
	index   map[dictKey]int
}

// Dict is a typed view over a dict object. Set takes its own counted
// references on key and value; Get and Items return borrowed references.
type Dict struct {
	o *Object
	d *dictData
}

// Dict returns a view over a dict object, or nil for any other kind.
func (o *Object) Dict() *Dict {
	if o == nil || o.Kind() != KindDict {
		return nil
	}
	return &Dict{o: o, d: o.data.(*dictData)}
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.d.entries)
}

// Set inserts or replaces the entry for key. Keys must be of a hashable
// kind (none, bool, int, float, str); anything else raises on the space
// and returns the error.
func (d *Dict) Set(key, value *Object) error {
	hk, ok := hashKey(key)
	if !ok {
		err := fmt.Errorf("%s is not hashable", kindName(key))
		d.o.space.Raise(err)
		return err
	}
	if pos, exists := d.d.index[hk]; exists {
		e := d.d.entries[pos]
		value.IncRef()
		e.value.DecRef()
		e.value = value
		return nil
	}
	d.d.index[hk] = len(d.d.entries)
	d.d.entries = append(d.d.entries, &dictEntry{key: key.IncRef(), value: value.IncRef()})
	return nil
}

// Get returns the value for key as a borrowed reference. Unhashable or
// absent keys return false without raising.
func (d *Dict) Get(key *Object) (*Object, bool) {
	hk, ok := hashKey(key)
	if !ok {
		return nil, false
	}
	pos, exists := d.d.index[hk]
	if !exists {
		return nil, false
	}
	return d.d.entries[pos].value, true
}

// Item is one dict entry; both references are borrowed.
type Item struct {
	Key   *Object
	Value *Object
}

// Items returns the entries in insertion order.
func (d *Dict) Items() []Item {
	items := make([]Item, len(d.d.entries))
	for i, e := range d.d.entries {
		items[i] = Item{Key: e.key, Value: e.value}
	}
	return items
}

func hashKey(key *Object) (dictKey, bool) {
	if key == nil {
		return dictKey{}, false
	}
	switch key.Kind() {
	case KindNone:
		return dictKey{kind: KindNone}, true
	case KindBool:
		return dictKey{kind: KindBool, b: key.data.(bool)}, true
	case KindInt:
		return dictKey{kind: KindInt, i: key.data.(int64)}, true
	case KindFloat:
		return dictKey{kind: KindFloat, f: key.data.(float64)}, true
	case KindStr:
		return dictKey{kind: KindStr, s: key.data.(string)}, true
	default:
		return dictKey{}, false
	}
}
