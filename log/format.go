// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"strconv"
	"unicode/utf8"
)

const (
	termMsgJust     = 40
	termTimeFormat  = "01-02|15:04:05.000"
	termCtxMaxPad   = 40
	ansiColorPrefix = "\x1b["
)

func levelColor(l slog.Level) int {
	switch {
	case l >= LevelCrit:
		return 35
	case l >= LevelError:
		return 31
	case l >= LevelWarn:
		return 33
	case l >= LevelInfo:
		return 32
	case l >= LevelDebug:
		return 36
	}
	return 34
}

func (h *TerminalHandler) format(buf []byte, r slog.Record, usecolor bool) []byte {
	b := bytes.NewBuffer(buf)
	lvl := LevelAlignedString(r.Level)
	if usecolor {
		b.WriteString(ansiColorPrefix)
		b.WriteString(strconv.Itoa(levelColor(r.Level)))
		b.WriteString("m")
		b.WriteString(lvl)
		b.WriteString(ansiColorPrefix + "0m")
	} else {
		b.WriteString(lvl)
	}
	b.WriteString("[")
	b.WriteString(r.Time.Format(termTimeFormat))
	b.WriteString("] ")
	b.WriteString(r.Message)

	// try to justify the log output for short messages
	if length := utf8.RuneCountInString(r.Message); (len(h.attrs)+r.NumAttrs()) > 0 && length < termMsgJust {
		b.Write(bytes.Repeat([]byte{' '}, termMsgJust-length))
	}

	for _, attr := range h.attrs {
		writeAttr(b, attr, usecolor, r.Level)
	}
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(b, attr, usecolor, r.Level)
		return true
	})
	b.WriteByte('\n')
	return b.Bytes()
}

func writeAttr(b *bytes.Buffer, attr slog.Attr, usecolor bool, lvl slog.Level) {
	b.WriteByte(' ')
	if usecolor {
		b.WriteString(ansiColorPrefix)
		b.WriteString(strconv.Itoa(levelColor(lvl)))
		b.WriteString("m")
		b.WriteString(attr.Key)
		b.WriteString(ansiColorPrefix + "0m=")
	} else {
		b.WriteString(attr.Key)
		b.WriteByte('=')
	}
	val := formatValue(attr.Value)
	if len(val) > termCtxMaxPad*4 {
		val = val[:termCtxMaxPad*4] + "…"
	}
	if needsQuoting(val) {
		b.WriteString(strconv.Quote(val))
	} else {
		b.WriteString(val)
	}
}

func needsQuoting(s string) bool {
	if len(s) == 0 {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r == utf8.RuneError {
			return true
		}
	}
	return false
}
