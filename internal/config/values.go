// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/adn/internal/apperr"
	"github.com/pdiddy/adn/internal/fsutil"
	"github.com/pdiddy/adn/internal/templates"
)

// Known configuration keys.
const (
	KeyDefaultTemplate   = "default_template"
	KeyOutputSuffix      = "output_suffix"
	KeyDefaultOutputDir  = "default_output_dir"
	KeyLogLevel          = "log_level"
	KeyAutoOpenGenerated = "auto_open_generated"
	KeyPreserveStructure = "preserve_structure"
	KeyDateFormat        = "date_format"
	KeyEncoding          = "encoding"
	KeyMaxFilenameLength = "max_filename_length"
)

const maxOutputSuffixLength = 20

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// Kind is the scalar type a configuration value holds.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return "string"
	}
}

// Value is a tagged configuration scalar.
type Value struct {
	kind Kind
	str  string
	b    bool
	n    int
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue returns an int Value.
func IntValue(n int) Value { return Value{kind: KindInt, n: n} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload. Non-string values return "".
func (v Value) Str() string { return v.str }

// Bool returns the bool payload. Non-bool values return false.
func (v Value) Bool() bool { return v.b }

// Int returns the int payload. Non-int values return 0.
func (v Value) Int() int { return v.n }

// Any returns the payload as a plain Go value, suitable for YAML encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.n
	default:
		return v.str
	}
}

// String formats the value for display.
func (v Value) String() string {
	return fmt.Sprint(v.Any())
}

// fromAny converts a decoded YAML scalar. Non-scalar values are kept as
// their printed form.
func fromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return StringValue("")
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(t)
	case int64:
		return IntValue(int(t))
	case uint64:
		return IntValue(int(t))
	case float64:
		if t == float64(int(t)) {
			return IntValue(int(t))
		}
		return StringValue(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return StringValue(fmt.Sprint(t))
	}
}

var kinds = map[string]Kind{
	KeyDefaultTemplate:   KindString,
	KeyOutputSuffix:      KindString,
	KeyDefaultOutputDir:  KindString,
	KeyLogLevel:          KindString,
	KeyAutoOpenGenerated: KindBool,
	KeyPreserveStructure: KindBool,
	KeyDateFormat:        KindString,
	KeyEncoding:          KindString,
	KeyMaxFilenameLength: KindInt,
}

// KnownKind returns the expected kind of a known key.
func KnownKind(key string) (Kind, bool) {
	k, ok := kinds[key]
	return k, ok
}

// KnownKeys returns the known keys, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(kinds))
	for k := range kinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defaults returns a fresh copy of the compiled-in configuration.
func Defaults() Config {
	return Config{
		KeyDefaultTemplate:   StringValue(templates.DefaultName),
		KeyOutputSuffix:      StringValue("_extraccion"),
		KeyDefaultOutputDir:  StringValue("."),
		KeyLogLevel:          StringValue("INFO"),
		KeyAutoOpenGenerated: BoolValue(false),
		KeyPreserveStructure: BoolValue(true),
		KeyDateFormat:        StringValue("%d/%m/%Y %H:%M"),
		KeyEncoding:          StringValue("utf-8"),
		KeyMaxFilenameLength: IntValue(100),
	}
}

// ParseValue converts command-line text into a Value of the key's kind and
// validates it. Unknown keys are stored as strings without validation.
func ParseValue(key, raw string) (Value, error) {
	kind, ok := kinds[key]
	if !ok {
		return StringValue(raw), nil
	}

	var v Value
	switch kind {
	case KindBool:
		b, err := parseBool(raw)
		if err != nil {
			return Value{}, apperr.Wrapf(err, apperr.InvalidInput, "invalid value for %s", key)
		}
		v = BoolValue(b)
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, apperr.Newf(apperr.InvalidInput, "invalid value for %s: %q is not an integer", key, raw)
		}
		v = IntValue(n)
	default:
		v = StringValue(raw)
	}

	if err := ValidateValue(key, v); err != nil {
		return Value{}, err
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean (use true/false, yes/no, on/off, 1/0)", raw)
}

// ValidateValue checks v against the rules for key. Unknown keys always pass.
func ValidateValue(key string, v Value) error {
	kind, ok := kinds[key]
	if !ok {
		return nil
	}
	if v.Kind() != kind {
		return apperr.Newf(apperr.InvalidInput, "invalid value for %s: expected %s, got %s", key, kind, v.Kind())
	}

	var err error
	switch key {
	case KeyDefaultTemplate:
		err = templates.ValidateName(v.Str())
	case KeyOutputSuffix:
		err = validation.Validate(v.Str(), validation.RuneLength(0, maxOutputSuffixLength))
	case KeyDefaultOutputDir:
		if filepath.IsAbs(v.Str()) && !fsutil.IsDir(v.Str()) {
			err = fmt.Errorf("directory %s does not exist", v.Str())
		}
	case KeyLogLevel:
		err = validation.Validate(v.Str(), validation.Required, validation.In(anySlice(LogLevels)...))
	case KeyEncoding:
		_, err = ResolveEncoding(v.Str())
	case KeyMaxFilenameLength:
		err = validation.Validate(v.Int(),
			validation.Required.Error("must be between 10 and 255"),
			validation.Min(10), validation.Max(255))
	}
	if err != nil {
		return apperr.Wrapf(err, apperr.InvalidInput, "invalid value for %s", key)
	}
	return nil
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Config is an effective configuration: defaults overlaid with persisted
// values.
type Config map[string]Value

// Lookup returns the value stored for key.
func (c Config) Lookup(key string) (Value, bool) {
	v, ok := c[key]
	return v, ok
}

// String returns a string setting. A missing or mistyped value yields the
// compiled-in default.
func (c Config) String(key string) string {
	if v, ok := c[key]; ok && v.Kind() == KindString {
		return v.Str()
	}
	return Defaults()[key].Str()
}

// Bool returns a bool setting with the same fallback as String.
func (c Config) Bool(key string) bool {
	if v, ok := c[key]; ok && v.Kind() == KindBool {
		return v.Bool()
	}
	return Defaults()[key].Bool()
}

// Int returns an int setting with the same fallback as String.
func (c Config) Int(key string) int {
	if v, ok := c[key]; ok && v.Kind() == KindInt {
		return v.Int()
	}
	return Defaults()[key].Int()
}

// Keys returns the keys in c, sorted.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of c.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
