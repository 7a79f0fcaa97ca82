package log

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(buf, "", LstdFlags)

	logger.Debug("debug text")
	if bs := buf.Bytes(); len(bs) != 0 {
		t.Error("On InfoLevel, Debug outputs some text")
	}
	if !errors.Is(logger.Err(), ErrOutputDiscardedByLevel) {
		t.Errorf("discarded Debug: Err() = %v", logger.Err())
	}

	buf.Reset()
	logger.Info("info text")
	if bs := buf.Bytes(); len(bs) == 0 {
		t.Error("On InfoLevel, Info outputs nothing")
	}

	logger.SetLevel(DebugLevel)

	buf.Reset()
	logger.Debug("debug text")
	if !strings.Contains(buf.String(), DebugPrefix+"debug text") {
		t.Errorf("On DebugLevel, Debug outputs %q", buf.String())
	}

	logger.SetLevel(WarnLevel)

	buf.Reset()
	logger.Info("info text")
	if bs := buf.Bytes(); len(bs) != 0 {
		t.Error("On WarnLevel, Info outputs some text")
	}
	logger.Warnf("hell mode flags disagree: %v", true)
	if !strings.Contains(buf.String(), WarnPrefix+"hell mode flags disagree: true") {
		t.Errorf("On WarnLevel, Warnf outputs %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"info", InfoLevel, false},
		{"", InfoLevel, false},
		{"DEBUG", DebugLevel, false},
		{"warn", WarnLevel, false},
		{"verbose", InfoLevel, true},
	} {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestLimitWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	w := LimitWriter(buf, 4)
	if n, err := w.Write([]byte("abcdef")); n != 4 || err != nil {
		t.Fatalf("Write() = %v, %v", n, err)
	}
	if _, err := w.Write([]byte("g")); err != io.EOF {
		t.Errorf("Write over limit: err = %v", err)
	}
	if buf.String() != "abcd" {
		t.Errorf("written %q", buf.String())
	}
}
