package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/variant"
)

// KeySep separates keys of nested tables in a key path,
// e.g. "gift_record.charon.count".
const KeySep = "."

// maxSuggestions is the number of candidates shown for a missing key.
const maxSuggestions = 3

func splitKeyPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty key path")
	}
	keys := strings.Split(path, KeySep)
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("key path %q has an empty key", path)
		}
	}
	return keys, nil
}

// parentTable walks keys except the last one and returns the table
// holding the last key.
func parentTable(root *variant.Table, keys []string) (*variant.Table, error) {
	t := root
	for i, k := range keys[:len(keys)-1] {
		sub, err := t.SubTable(k)
		if err != nil {
			return nil, missingKeyError(t, strings.Join(keys[:i+1], KeySep), k, err)
		}
		t = sub
	}
	return t, nil
}

// lookupPath returns the value at the dotted path under root.
func lookupPath(root *variant.Table, path string) (variant.Variant, error) {
	keys, err := splitKeyPath(path)
	if err != nil {
		return variant.Variant{}, err
	}
	parent, err := parentTable(root, keys)
	if err != nil {
		return variant.Variant{}, err
	}
	last := keys[len(keys)-1]
	v, ok := parent.Get(last)
	if !ok {
		return variant.Variant{}, missingKeyError(parent, path, last, savefile.ErrFieldNotPresent)
	}
	return v, nil
}

// setPath parses text according to the current kind of the value at path
// and assigns it. A new key is added when the parent table exists.
// The top level hell_mode goes through SaveFile.SetHellMode so that both
// copies of the flag change together.
func setPath(sf *savefile.SaveFile, path, text string) (variant.Variant, error) {
	keys, err := splitKeyPath(path)
	if err != nil {
		return variant.Variant{}, err
	}
	parent, err := parentTable(sf.LuaState, keys)
	if err != nil {
		return variant.Variant{}, err
	}
	last := keys[len(keys)-1]
	cur, exists := parent.Get(last)

	v, err := parseValue(text, cur, exists)
	if err != nil {
		return variant.Variant{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(keys) == 1 && last == savefile.KeyHellMode {
		on, ok := v.AsBool()
		if !ok {
			return variant.Variant{}, fmt.Errorf("%w: %s must be a bool", savefile.ErrTypeMismatch, path)
		}
		return v, sf.SetHellMode(on)
	}
	return v, parent.Set(last, v)
}

// parseValue converts user text into a Variant of the kind of cur.
// For a new key, booleans and numbers are recognized and anything else
// is a string.
func parseValue(text string, cur variant.Variant, exists bool) (variant.Variant, error) {
	if !exists {
		switch text {
		case "true":
			return variant.Bool(true), nil
		case "false":
			return variant.Bool(false), nil
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return variant.Float(f), nil
		}
		return variant.String(text), nil
	}

	switch cur.Kind() {
	case variant.KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return variant.Variant{}, fmt.Errorf("%w: %q is not a number", savefile.ErrTypeMismatch, text)
		}
		return variant.Float(f), nil
	case variant.KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return variant.Variant{}, fmt.Errorf("%w: %q is not a bool", savefile.ErrTypeMismatch, text)
		}
		return variant.Bool(b), nil
	case variant.KindString:
		return variant.String(text), nil
	default:
		return variant.Variant{}, fmt.Errorf("%w: can not set a %v from text", savefile.ErrTypeMismatch, cur.Kind())
	}
}

// missingKeyError wraps err with the closest keys of t to key.
func missingKeyError(t *variant.Table, path, key string, err error) error {
	if cands := suggest(key, t.Keys()); len(cands) > 0 {
		return fmt.Errorf("%w: %s (did you mean %s?)", err, path, quoteJoin(cands))
	}
	return fmt.Errorf("%w: %s", err, path)
}

// suggest returns up to maxSuggestions candidates close to key,
// nearest first. A candidate is close when its edit distance is within
// a third of the key length, and at least 2.
func suggest(key string, candidates []string) []string {
	limit := len(key) / 3
	if limit < 2 {
		limit = 2
	}
	type scored struct {
		key  string
		dist int
	}
	var found []scored
	for _, c := range candidates {
		if c == key {
			continue
		}
		if d := levenshtein.ComputeDistance(key, c); d <= limit {
			found = append(found, scored{c, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].key < found[j].key
	})
	if len(found) > maxSuggestions {
		found = found[:maxSuggestions]
	}
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.key
	}
	return out
}

func quoteJoin(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return strings.Join(q, ", ")
}
