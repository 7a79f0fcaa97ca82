package app

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/variant"
)

func TestSuggest(t *testing.T) {
	keys := []string{"darkness", "gems", "diamonds", "nectar", "gift_record", "hell_mode"}
	for _, tc := range []struct {
		key  string
		want []string
	}{
		{"darknes", []string{"darkness"}},
		{"gem", []string{"gems"}},
		{"gift_recrod", []string{"gift_record"}},
		{"titan_blood", nil},
		{"darkness", nil}, // an exact key is not a suggestion.
	} {
		got := suggest(tc.key, keys)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestSuggestOrderAndLimit(t *testing.T) {
	got := suggest("aaaa", []string{"aaad", "aabb", "aaac", "abbb", "aaab"})
	want := []string{"aaab", "aaac", "aaad"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseValue(t *testing.T) {
	for _, tc := range []struct {
		text   string
		cur    variant.Variant
		exists bool
		want   variant.Variant
		err    error
	}{
		{"1.5", variant.Float(0), true, variant.Float(1.5), nil},
		{"x", variant.Float(0), true, variant.Variant{}, savefile.ErrTypeMismatch},
		{"1", variant.Bool(false), true, variant.Bool(true), nil},
		{"maybe", variant.Bool(false), true, variant.Variant{}, savefile.ErrTypeMismatch},
		{"true", variant.String(""), true, variant.String("true"), nil},
		{"1", variant.TableValue(variant.NewTable()), true, variant.Variant{}, savefile.ErrTypeMismatch},
		{"false", variant.Variant{}, false, variant.Bool(false), nil},
		{"-3e2", variant.Variant{}, false, variant.Float(-300), nil},
		{"Styx", variant.Variant{}, false, variant.String("Styx"), nil},
	} {
		got, err := parseValue(tc.text, tc.cur, tc.exists)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("%q: got error %v, want %v", tc.text, err, tc.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tc.text, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("%q: got %v (%v), want %v (%v)", tc.text, got, got.Kind(), tc.want, tc.want.Kind())
		}
	}
}

func TestSplitKeyPath(t *testing.T) {
	if _, err := splitKeyPath(""); err == nil {
		t.Error("empty path accepted")
	}
	if _, err := splitKeyPath("a..b"); err == nil {
		t.Error("empty key accepted")
	}
	got, err := splitKeyPath("a.b.c")
	if err != nil || !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("got %v, %v", got, err)
	}
}
