package export

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/variant"
)

func newTestSave(t *testing.T) *savefile.SaveFile {
	inner := variant.NewTable()
	require.NoError(t, inner.Set("zeta", variant.Float(1)))
	require.NoError(t, inner.Set("alpha", variant.Bool(true)))

	lua := variant.NewTable()
	require.NoError(t, lua.Set("darkness", variant.Float(120.25)))
	require.NoError(t, lua.Set("name", variant.String("1")))
	require.NoError(t, lua.Set("flag", variant.Bool(false)))
	require.NoError(t, lua.Set("gift_record", variant.TableValue(inner)))
	require.NoError(t, lua.Set("text_lines", variant.TableValue(nil)))

	return &savefile.SaveFile{
		Version:  savefile.Version17,
		Location: "Tartarus",
		Runs:     5,
		LuaState: lua,
	}
}

func TestExportImportKeepsOrderAndTypes(t *testing.T) {
	for _, f := range []Format{JSON, MsgPack} {
		t.Run(f.String(), func(t *testing.T) {
			sf := newTestSave(t)
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, sf, f))

			got, err := Import(&buf, f)
			require.NoError(t, err)
			require.True(t, got.Equal(sf.LuaState), "got %v", variant.TableValue(got))
		})
	}
}

func TestExportJSONShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, newTestSave(t), JSON))
	s := buf.String()
	require.Contains(t, s, `"format"`)
	require.Contains(t, s, FormatID)
	require.Contains(t, s, `"Tartarus"`)
	// zeta is written before alpha.
	require.Less(t, strings.Index(s, `"zeta"`), strings.Index(s, `"alpha"`))
}

func TestExportRejectsNaNInJSON(t *testing.T) {
	sf := newTestSave(t)
	require.NoError(t, sf.LuaState.Set("darkness", variant.Float(math.NaN())))

	err := Export(&bytes.Buffer{}, sf, JSON)
	require.True(t, errors.Is(err, ErrNotRepresentable), "got %v", err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sf, MsgPack))
	got, err := Import(&buf, MsgPack)
	require.NoError(t, err)
	d, err := got.Float("darkness")
	require.NoError(t, err)
	require.True(t, math.IsNaN(d))
}

func TestImportErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"wrong format", `{"format": "other", "lua_state": []}`},
		{"missing value", `{"format": "pluto-export/1", "lua_state": [{"key": "a", "type": "float"}]}`},
		{"unknown type", `{"format": "pluto-export/1", "lua_state": [{"key": "a", "type": "int", "float": 1}]}`},
		{"duplicate key", `{"format": "pluto-export/1", "lua_state": [
			{"key": "a", "type": "bool", "bool": true},
			{"key": "a", "type": "bool", "bool": false}]}`},
		{"nested error", `{"format": "pluto-export/1", "lua_state": [
			{"key": "t", "type": "table", "table": [{"key": "b", "type": "string"}]}]}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tc.doc), JSON)
			require.True(t, errors.Is(err, ErrBadDocument), "got %v", err)
		})
	}
}

func TestImportEmptyTable(t *testing.T) {
	doc := `{"format": "pluto-export/1", "lua_state": [{"key": "use_record", "type": "table"}]}`
	got, err := Import(strings.NewReader(doc), JSON)
	require.NoError(t, err)
	sub, err := got.SubTable("use_record")
	require.NoError(t, err)
	require.Equal(t, 0, sub.Len())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"json":             JSON,
		"JSON":             JSON,
		"out/save.json":    JSON,
		"msgpack":          MsgPack,
		"Profile1.msgpack": MsgPack,
		"x.mp":             MsgPack,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFormat("yaml")
	require.Error(t, err)
}

// nestedDoc returns a document whose lua state nests levels tables.
func nestedDoc(levels int) string {
	var sb strings.Builder
	sb.WriteString(`{"format": "pluto-export/1", "lua_state": `)
	for i := 1; i < levels; i++ {
		sb.WriteString(`[{"key": "t", "type": "table", "table": `)
	}
	sb.WriteString(`[]`)
	for i := 1; i < levels; i++ {
		sb.WriteString(`}]`)
	}
	sb.WriteString(`}`)
	return sb.String()
}

func TestImportDepthLimit(t *testing.T) {
	got, err := Import(strings.NewReader(nestedDoc(variant.MaxDepth)), JSON)
	require.NoError(t, err)
	sf := &savefile.SaveFile{Version: savefile.Version17, LuaState: got}
	p, err := savefile.Encode(sf)
	require.NoError(t, err)
	_, err = savefile.Decode(p)
	require.NoError(t, err)

	_, err = Import(strings.NewReader(nestedDoc(80)), JSON)
	require.ErrorIs(t, err, variant.ErrTooDeep)
	require.ErrorIs(t, err, ErrBadDocument)
}

func TestExportRejectsSelfReference(t *testing.T) {
	sf := newTestSave(t)
	sf.LuaState.Replace("self", variant.TableValue(sf.LuaState))
	err := Export(&bytes.Buffer{}, sf, MsgPack)
	require.ErrorIs(t, err, variant.ErrTooDeep)
}
