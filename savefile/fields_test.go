package savefile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mzki/pluto/variant"
)

func TestAccessors(t *testing.T) {
	sf := newTestSave(t, Version17)
	if d, err := sf.Darkness(); err != nil || d != 120 {
		t.Errorf("Darkness: got %v, %v", d, err)
	}
	if g, err := sf.Gems(); err != nil || g != 42.5 {
		t.Errorf("Gems: got %v, %v", g, err)
	}

	for name, get := range map[string]func() (float64, error){
		"Diamonds":     sf.Diamonds,
		"Nectar":       sf.Nectar,
		"Ambrosia":     sf.Ambrosia,
		"ChthonicKeys": sf.ChthonicKeys,
		"TitanBlood":   sf.TitanBlood,
	} {
		if _, err := get(); !errors.Is(err, ErrFieldNotPresent) {
			t.Errorf("%s: got %v", name, err)
		}
	}
}

func TestSettersAppendNewKeys(t *testing.T) {
	sf := newTestSave(t, Version17)
	before := sf.LuaState.Keys()

	if err := sf.SetTitanBlood(3); err != nil {
		t.Fatal(err)
	}
	if err := sf.SetNectar(7); err != nil {
		t.Fatal(err)
	}
	if err := sf.SetDarkness(1); err != nil {
		t.Fatal(err)
	}

	keys := sf.LuaState.Keys()
	if len(keys) != len(before)+2 {
		t.Fatalf("keys: %v", keys)
	}
	for i, k := range before {
		if keys[i] != k {
			t.Errorf("existing key moved: got %v", keys)
		}
	}
	if keys[len(keys)-2] != KeyTitanBlood || keys[len(keys)-1] != KeyNectar {
		t.Errorf("new keys not appended in order: %v", keys)
	}
}

func TestSetterTypeMismatch(t *testing.T) {
	sf := newTestSave(t, Version17)
	sf.LuaState.Replace(KeyAmbrosia, variant.String("lots"))
	if err := sf.SetAmbrosia(3); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("got %v", err)
	}
	if s, _ := sf.LuaState.String(KeyAmbrosia); s != "lots" {
		t.Errorf("value changed on failed set: %q", s)
	}
	if _, err := sf.Ambrosia(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("get: got %v", err)
	}
}

func TestCurrencies(t *testing.T) {
	sf := newTestSave(t, Version17)
	if err := sf.SetChthonicKeys(11); err != nil {
		t.Fatal(err)
	}
	got := sf.Currencies()
	want := []Amount{
		{Currency{KeyDarkness, "Darkness"}, 120},
		{Currency{KeyGems, "Gemstones"}, 42.5},
		{Currency{KeyChthonicKey, "Chthonic Keys"}, 11},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResetGiftRecordScope(t *testing.T) {
	sf := newTestSave(t, Version17)
	untouched := sf.Clone()

	sf.ResetGiftRecord()

	for _, key := range RecordKeys {
		sub, err := sf.LuaState.SubTable(key)
		if err != nil {
			t.Errorf("%s: %v", key, err)
			continue
		}
		if sub.Len() != 0 {
			t.Errorf("%s: not empty, %d entries", key, sub.Len())
		}
	}

	isRecord := make(map[string]bool)
	for _, key := range RecordKeys {
		isRecord[key] = true
	}
	untouched.LuaState.Range(func(key string, v variant.Variant) bool {
		if isRecord[key] {
			return true
		}
		got, ok := sf.LuaState.Get(key)
		if !ok || !got.Equal(v) {
			t.Errorf("%s changed: %v -> %v", key, v, got)
		}
		return true
	})
	// existing record keys keep their position.
	if keys := sf.LuaState.Keys(); keys[1] != "gift_record" || keys[4] != "npc_interactions" {
		t.Errorf("record keys moved: %v", keys)
	}

	// the reset persists through an encode.
	got, err := Decode(mustEncode(t, sf))
	if err != nil {
		t.Fatal(err)
	}
	if sub, err := got.LuaState.SubTable("gift_record"); err != nil || sub.Len() != 0 {
		t.Errorf("gift_record after decode: %v, %v", sub, err)
	}
}

func TestHellModeConsistency(t *testing.T) {
	for _, on := range []bool{true, false, true} {
		sf := newTestSave(t, Version17)
		if err := sf.SetHellMode(on); err != nil {
			t.Fatal(err)
		}
		got, err := Decode(mustEncode(t, sf))
		if err != nil {
			t.Fatal(err)
		}
		lua, err := got.HellMode()
		if err != nil {
			t.Fatal(err)
		}
		if lua != on || got.HellModeEnabled() != on {
			t.Errorf("set %v: lua %v, flag %v", on, lua, got.HellModeEnabled())
		}
	}
}

func TestHellModeDisagreementFollowsFlag(t *testing.T) {
	sf := newTestSave(t, Version17)
	sf.hellMode = true // lua state says false.

	got, err := Decode(mustEncode(t, sf))
	if err != nil {
		t.Fatal(err)
	}
	if lua, _ := got.HellMode(); !lua || !got.HellModeEnabled() {
		t.Errorf("lua %v, flag %v", lua, got.HellModeEnabled())
	}
}

func TestHellModeMissing(t *testing.T) {
	sf := newTestSave(t, Version17)
	sf.LuaState.Delete(KeyHellMode)
	if _, err := sf.HellMode(); !errors.Is(err, ErrFieldNotPresent) {
		t.Errorf("got %v", err)
	}
	// no key is added when the flag was never set.
	got, err := Decode(mustEncode(t, sf))
	if err != nil {
		t.Fatal(err)
	}
	if got.LuaState.Has(KeyHellMode) {
		t.Error("hell_mode added on save")
	}
}

func TestHellModeNonBoolFollowsFlag(t *testing.T) {
	for _, v := range []variant.Variant{variant.String("yes"), variant.Float(1), variant.TableValue(nil)} {
		sf := newTestSave(t, Version17)
		keys := sf.LuaState.Keys()
		sf.LuaState.Replace(KeyHellMode, v)

		got, err := Decode(mustEncode(t, sf))
		if err != nil {
			t.Fatal(err)
		}
		lua, err := got.HellMode()
		if err != nil {
			t.Fatalf("%v: hell_mode after save: %v", v.Kind(), err)
		}
		if lua != got.HellModeEnabled() {
			t.Errorf("%v: lua %v, flag %v", v.Kind(), lua, got.HellModeEnabled())
		}
		if !reflect.DeepEqual(got.LuaState.Keys(), keys) {
			t.Errorf("%v: key order changed: %v", v.Kind(), got.LuaState.Keys())
		}
	}
}
