package savefile

import (
	"github.com/mzki/pluto/util/log"
	"github.com/mzki/pluto/variant"
)

// keys of the Lua state read and written by the accessors.
const (
	KeyDarkness    = "darkness"
	KeyGems        = "gems"
	KeyDiamonds    = "diamonds"
	KeyNectar      = "nectar"
	KeyAmbrosia    = "ambrosia"
	KeyChthonicKey = "chthonic_key"
	KeyTitanBlood  = "titan_blood"
	KeyHellMode    = "hell_mode"
)

// RecordKeys are the sub-tables cleared by ResetGiftRecord.
var RecordKeys = []string{
	"gift_record",
	"npc_interactions",
	"trigger_record",
	"activation_record",
	"use_record",
	"text_lines",
}

// Currency names a float field of the Lua state.
type Currency struct {
	Key   string
	Label string
}

// CurrencyFields lists the resource fields in display order.
var CurrencyFields = []Currency{
	{KeyDarkness, "Darkness"},
	{KeyGems, "Gemstones"},
	{KeyDiamonds, "Diamonds"},
	{KeyNectar, "Nectar"},
	{KeyAmbrosia, "Ambrosia"},
	{KeyChthonicKey, "Chthonic Keys"},
	{KeyTitanBlood, "Titan Blood"},
}

func (sf *SaveFile) Darkness() (float64, error)     { return sf.LuaState.Float(KeyDarkness) }
func (sf *SaveFile) Gems() (float64, error)         { return sf.LuaState.Float(KeyGems) }
func (sf *SaveFile) Diamonds() (float64, error)     { return sf.LuaState.Float(KeyDiamonds) }
func (sf *SaveFile) Nectar() (float64, error)       { return sf.LuaState.Float(KeyNectar) }
func (sf *SaveFile) Ambrosia() (float64, error)     { return sf.LuaState.Float(KeyAmbrosia) }
func (sf *SaveFile) ChthonicKeys() (float64, error) { return sf.LuaState.Float(KeyChthonicKey) }
func (sf *SaveFile) TitanBlood() (float64, error)   { return sf.LuaState.Float(KeyTitanBlood) }

// Setters add a missing key, and fail with ErrTypeMismatch when the key
// holds other than a float.
func (sf *SaveFile) SetDarkness(v float64) error     { return sf.SetFloat(KeyDarkness, v) }
func (sf *SaveFile) SetGems(v float64) error         { return sf.SetFloat(KeyGems, v) }
func (sf *SaveFile) SetDiamonds(v float64) error     { return sf.SetFloat(KeyDiamonds, v) }
func (sf *SaveFile) SetNectar(v float64) error       { return sf.SetFloat(KeyNectar, v) }
func (sf *SaveFile) SetAmbrosia(v float64) error     { return sf.SetFloat(KeyAmbrosia, v) }
func (sf *SaveFile) SetChthonicKeys(v float64) error { return sf.SetFloat(KeyChthonicKey, v) }
func (sf *SaveFile) SetTitanBlood(v float64) error   { return sf.SetFloat(KeyTitanBlood, v) }

// Amount is a currency value read from the Lua state.
type Amount struct {
	Currency
	Value float64
}

// Currencies returns present currency values in the order of CurrencyFields.
// A field holding other than a float is skipped.
func (sf *SaveFile) Currencies() []Amount {
	ret := make([]Amount, 0, len(CurrencyFields))
	for _, c := range CurrencyFields {
		if v, err := sf.LuaState.Float(c.Key); err == nil {
			ret = append(ret, Amount{c, v})
		}
	}
	return ret
}

// Float returns top level float field of the Lua state.
func (sf *SaveFile) Float(key string) (float64, error) { return sf.LuaState.Float(key) }

// SetFloat assigns top level float field of the Lua state.
func (sf *SaveFile) SetFloat(key string, v float64) error {
	return sf.LuaState.Set(key, variant.Float(v))
}

// HellMode returns hell_mode of the Lua state.
func (sf *SaveFile) HellMode() (bool, error) { return sf.LuaState.Bool(KeyHellMode) }

// SetHellMode sets both hell_mode of the Lua state and the top-level flag.
func (sf *SaveFile) SetHellMode(on bool) error {
	if err := sf.LuaState.Set(KeyHellMode, variant.Bool(on)); err != nil {
		return err
	}
	sf.hellMode = on
	sf.hellModeSet = true
	return nil
}

// syncHellMode makes hell_mode of the Lua state follow the top-level flag.
func (sf *SaveFile) syncHellMode() {
	lua, err := sf.LuaState.Bool(KeyHellMode)
	switch {
	case sf.hellModeSet:
		sf.LuaState.Replace(KeyHellMode, variant.Bool(sf.hellMode))
	case err == nil:
		if lua != sf.hellMode {
			log.Warnf("savefile: lua state hell_mode=%v disagrees with flag=%v, using the flag", lua, sf.hellMode)
			sf.LuaState.Replace(KeyHellMode, variant.Bool(sf.hellMode))
		}
	case sf.LuaState.Has(KeyHellMode):
		v, _ := sf.LuaState.Get(KeyHellMode)
		log.Warnf("savefile: lua state hell_mode is %v, not bool, using the flag=%v", v.Kind(), sf.hellMode)
		sf.LuaState.Replace(KeyHellMode, variant.Bool(sf.hellMode))
	}
}

// ResetGiftRecord replaces every table of RecordKeys with an empty table.
// A missing one is added. Other keys are untouched.
// It changes memory only, Save persists it.
func (sf *SaveFile) ResetGiftRecord() {
	for _, key := range RecordKeys {
		sf.LuaState.Replace(key, variant.TableValue(nil))
	}
}
