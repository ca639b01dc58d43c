package logger

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Everforest Dark palette
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorFg       = "\x1b[38;5;223m"
	colorGreen    = "\x1b[38;5;108m"
	colorGreenMid = "\x1b[38;5;107m"
	colorAqua     = "\x1b[38;5;109m"
	colorOrange   = "\x1b[38;5;208m"
	colorYellow   = "\x1b[38;5;179m"
	colorRed      = "\x1b[38;5;167m"
	colorRedBg    = "\x1b[48;5;52m"
	colorYellowBg = "\x1b[48;5;58m"
)

var (
	anchorPattern = regexp.MustCompile(`\^?task-\d{8}-\d{3}`)
	glyphs        = []string{"✅", "⏳", "⛔", "▶"}
	bufferPool    = buffer.NewPool()
)

// minimalEncoder is a compact console encoder:
//
//	10:30:00  WARN  xref  Page not found  page=People/External/Jane.md
//
// Fields added with With are kept in a map encoder and printed before the
// entry's own fields. Every field is printed.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
	keys  []string // insertion order of MapObjectEncoder keys
	color bool
}

// newMinimalEncoder colors output unless NO_COLOR is set
func newMinimalEncoder() *minimalEncoder {
	_, noColor := os.LookupEnv("NO_COLOR")
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: !noColor}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := &minimalEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		keys:             append([]string(nil), enc.keys...),
		color:            enc.color,
	}
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

// AddString and friends record key order for context fields; the rest fall
// back to the embedded map encoder and are printed in sorted order.
func (enc *minimalEncoder) AddString(key, value string) {
	enc.track(key)
	enc.MapObjectEncoder.AddString(key, value)
}

func (enc *minimalEncoder) AddInt64(key string, value int64) {
	enc.track(key)
	enc.MapObjectEncoder.AddInt64(key, value)
}

func (enc *minimalEncoder) AddBool(key string, value bool) {
	enc.track(key)
	enc.MapObjectEncoder.AddBool(key, value)
}

func (enc *minimalEncoder) track(key string) {
	if _, seen := enc.Fields[key]; !seen {
		enc.keys = append(enc.keys, key)
	}
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color || s == "" {
		return s
	}
	return color + s + colorReset
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(enc.paint(colorGreenMid, ent.Time.Format("15:04:05")))

	if lvl := enc.level(ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(colorOrange, ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(enc.message(ent.Message))

	if kv := enc.fieldValues(fields); kv != "" {
		final.AppendString("  ")
		final.AppendString(kv)
	}

	final.AppendString("\n")
	return final, nil
}

// level returns a highlighted label for WARN and above, nothing for INFO
func (enc *minimalEncoder) level(level zapcore.Level) string {
	switch {
	case level == zapcore.DebugLevel:
		return enc.paint(colorAqua, "DEBUG")
	case level == zapcore.WarnLevel:
		if !enc.color {
			return "WARN"
		}
		return colorBold + colorYellowBg + colorYellow + "WARN" + colorReset
	case level >= zapcore.ErrorLevel:
		if !enc.color {
			return level.CapitalString()
		}
		return colorBold + colorRedBg + colorRed + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// message colors task anchors and status glyphs
func (enc *minimalEncoder) message(msg string) string {
	if !enc.color {
		return msg
	}
	msg = anchorPattern.ReplaceAllStringFunc(msg, func(a string) string {
		return colorAqua + a + colorReset + colorFg
	})
	for _, g := range glyphs {
		msg = strings.ReplaceAll(msg, g, colorGreen+g+colorReset+colorFg)
	}
	return colorFg + msg + colorReset
}

// fieldValues renders context fields then entry fields as key=value
func (enc *minimalEncoder) fieldValues(fields []zapcore.Field) string {
	var parts []string

	ordered := append([]string(nil), enc.keys...)
	var rest []string
	for k := range enc.Fields {
		if !contains(ordered, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range append(ordered, rest...) {
		parts = append(parts, enc.pair(k, enc.Fields[k]))
	}

	for _, f := range fields {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		keys := make([]string, 0, len(m.Fields))
		for k := range m.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, enc.pair(k, m.Fields[k]))
		}
	}
	return strings.Join(parts, " ")
}

func (enc *minimalEncoder) pair(key string, value interface{}) string {
	v := fmt.Sprintf("%v", value)
	switch key {
	case FieldAnchor, FieldRequestID:
		v = enc.paint(colorAqua, v)
	case FieldDurationMS, FieldCount:
		v = enc.paint(colorGreen, v)
	case FieldError:
		v = enc.paint(colorRed, v)
	}
	return enc.paint(colorGreenMid, key+"=") + v
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
