package variant

import "fmt"

// Table is an insertion ordered mapping from string key to Variant.
//
// zero value is not usable, construct it by NewTable.
type Table struct {
	keys   []string
	values []Variant
	index  map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Len returns number of entries.
func (t *Table) Len() int { return len(t.keys) }

// Keys returns keys in order. returned slice is a copy.
func (t *Table) Keys() []string { return append([]string(nil), t.keys...) }

// Has reports whether key exists.
func (t *Table) Has(key string) bool {
	_, ok := t.index[key]
	return ok
}

// Get returns the value of key and whether it exists.
func (t *Table) Get(key string) (Variant, bool) {
	i, ok := t.index[key]
	if !ok {
		return Variant{}, false
	}
	return t.values[i], true
}

func (t *Table) lookup(key string, want Kind) (Variant, error) {
	v, ok := t.Get(key)
	if !ok {
		return v, fmt.Errorf("%w: %q", ErrFieldNotPresent, key)
	}
	if v.kind != want {
		return v, fmt.Errorf("%w: %q is %v, not %v", ErrTypeMismatch, key, v.kind, want)
	}
	return v, nil
}

func (t *Table) Float(key string) (float64, error) {
	v, err := t.lookup(key, KindFloat)
	return v.num, err
}

func (t *Table) Bool(key string) (bool, error) {
	v, err := t.lookup(key, KindBool)
	return v.num != 0, err
}

func (t *Table) String(key string) (string, error) {
	v, err := t.lookup(key, KindString)
	return v.str, err
}

// SubTable returns nested table under key. It shares memory with t.
func (t *Table) SubTable(key string) (*Table, error) {
	v, err := t.lookup(key, KindTable)
	return v.tbl, err
}

// Set assigns v to key. A new key is appended after existing keys.
// Existing key keeps its position and must keep its Kind, otherwise
// ErrTypeMismatch is returned and t is unchanged.
func (t *Table) Set(key string, v Variant) error {
	if v.kind == KindInvalid {
		return fmt.Errorf("%w: invalid variant for %q", ErrTypeMismatch, key)
	}
	if i, ok := t.index[key]; ok && t.values[i].kind != v.kind {
		return fmt.Errorf("%w: %q is %v, can not assign %v", ErrTypeMismatch, key, t.values[i].kind, v.kind)
	}
	t.Replace(key, v)
	return nil
}

// Replace assigns v to key regardless of the current Kind.
// position of an existing key is kept.
func (t *Table) Replace(key string, v Variant) {
	if v.kind == KindInvalid {
		panic("variant: Replace with invalid variant")
	}
	if i, ok := t.index[key]; ok {
		t.values[i] = v
		return
	}
	t.index[key] = len(t.keys)
	t.keys = append(t.keys, key)
	t.values = append(t.values, v)
}

// Delete removes key and reports whether it existed.
func (t *Table) Delete(key string) bool {
	i, ok := t.index[key]
	if !ok {
		return false
	}
	t.keys = append(t.keys[:i], t.keys[i+1:]...)
	t.values = append(t.values[:i], t.values[i+1:]...)
	delete(t.index, key)
	for j := i; j < len(t.keys); j++ {
		t.index[t.keys[j]] = j
	}
	return true
}

// Range calls fn for each entry in order until fn returns false.
func (t *Table) Range(fn func(key string, v Variant) bool) {
	for i, k := range t.keys {
		if !fn(k, t.values[i]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		keys:   append([]string(nil), t.keys...),
		values: make([]Variant, len(t.values)),
		index:  make(map[string]int, len(t.index)),
	}
	for i, v := range t.values {
		c.values[i] = v.Clone()
	}
	for k, i := range t.index {
		c.index[k] = i
	}
	return c
}

// Equal reports whether both tables have the same entries in the same order.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.keys) != len(o.keys) {
		return false
	}
	for i := range t.keys {
		if t.keys[i] != o.keys[i] || !t.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}
