package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mzki/pluto/infra/backup"
	"github.com/mzki/pluto/infra/repo"
	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/util/errutil"
	"github.com/mzki/pluto/variant"
	"github.com/mzki/pluto/width"
)

const (
	timeFormat = "2006-01-02 15:04:05"

	// longest text shown in a table cell.
	maxCellWidth = 40
	ellipsis     = "..."

	indentUnit = "  "
)

func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func cell(s string) string { return width.Default.Truncate(s, maxCellWidth, ellipsis) }

// writeSaveFile writes header fields and currencies of sf.
func writeSaveFile(w io.Writer, path string, sf *savefile.SaveFile) error {
	ew := errutil.NewErrWriter(w)

	var fields width.Table
	fields.AddRow("file", path)
	fields.AddRow("version", u32(sf.Version))
	fields.AddRow("timestamp", strconv.FormatUint(sf.Timestamp, 10))
	fields.AddRow("location", cell(sf.Location))
	fields.AddRow("runs", u32(sf.Runs))
	fields.AddRow("meta points", u32(sf.MetaPoints))
	fields.AddRow("shrine points", u32(sf.ShrinePoints))
	fields.AddRow("god mode", strconv.FormatBool(sf.GodMode))
	fields.AddRow("hell mode", strconv.FormatBool(sf.HellModeEnabled()))
	fields.AddRow("current map", cell(sf.CurrentMap))
	if sf.Version >= savefile.Version17 {
		fields.AddRow("start next map", cell(sf.StartNextMap))
	}
	fields.AddRow("lua keys", strings.Join(sf.LuaKeys, ", "))
	fields.AddRow("lua state", strconv.Itoa(sf.LuaState.Len())+" entries")
	if len(sf.Trailing) > 0 {
		fields.AddRow("trailing", strconv.Itoa(len(sf.Trailing))+" bytes")
	}
	fields.WriteTo(ew)

	if amounts := sf.Currencies(); len(amounts) > 0 {
		ew.Printf("\n")
		currencies := width.Table{Aligns: []width.Align{width.AlignLeft, width.AlignRight}}
		for _, a := range amounts {
			currencies.AddRow(a.Label, formatFloat(a.Value))
		}
		currencies.WriteTo(ew)
	}
	return ew.Err()
}

// writeVariant writes a scalar on a line, or a table as an indented tree.
func writeVariant(w io.Writer, v variant.Variant) error {
	ew := errutil.NewErrWriter(w)
	if t, ok := v.AsTable(); ok {
		writeTree(ew, t, 0)
	} else {
		ew.Printf("%v\n", v)
	}
	return ew.Err()
}

func writeTree(ew *errutil.Writer, t *variant.Table, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	t.Range(func(key string, v variant.Variant) bool {
		if sub, ok := v.AsTable(); ok {
			ew.Printf("%s%s:\n", indent, key)
			writeTree(ew, sub, depth+1)
		} else {
			ew.Printf("%s%s = %v\n", indent, key, v)
		}
		return ew.Err() == nil
	})
}

// writeSummaries writes a row per save file.
func writeSummaries(w io.Writer, list []*repo.Summary) error {
	ew := errutil.NewErrWriter(w)
	t := width.Table{Aligns: []width.Align{
		width.AlignRight, width.AlignLeft, width.AlignRight, width.AlignRight,
		width.AlignLeft, width.AlignLeft, width.AlignRight, width.AlignLeft,
	}}
	t.AddRow("SLOT", "FILE", "VER", "RUNS", "LOCATION", "HELL", "DARKNESS", "MODIFIED")
	for _, s := range list {
		slot := "-"
		if s.Slot > 0 {
			slot = strconv.Itoa(s.Slot)
		}
		t.AddRow(slot, cell(filepath.Base(s.Path)), u32(s.Version), u32(s.Runs),
			cell(s.Location), strconv.FormatBool(s.HellMode), formatFloat(s.Darkness), formatTime(s.ModTime))
	}
	t.WriteTo(ew)
	return ew.Err()
}

// writeSummaryLine writes s on a line, used by watch.
func writeSummaryLine(w io.Writer, s *repo.Summary) {
	fmt.Fprintf(w, "%s: version %d, runs %d, %s, darkness %s, hell mode %v\n",
		s.Path, s.Version, s.Runs, s.Location, formatFloat(s.Darkness), s.HellMode)
}

// writeBackups writes backups with their index for restore.
func writeBackups(w io.Writer, entries []backup.Entry) error {
	ew := errutil.NewErrWriter(w)
	t := width.Table{Aligns: []width.Align{width.AlignRight}}
	for i, e := range entries {
		t.AddRow(strconv.Itoa(i), formatTime(e.Time), e.Path)
	}
	t.WriteTo(ew)
	return ew.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeFormat)
}
