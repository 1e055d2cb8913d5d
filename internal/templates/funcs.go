// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package templates

import (
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/lestrrat-go/strftime"
)

// DefaultDatePattern is the dateformat pattern used when none is given.
const DefaultDatePattern = "%d/%m/%Y"

// FuncMap returns the sprig text functions plus dateformat and filesize.
func FuncMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["dateformat"] = DateFormat
	funcs["filesize"] = FileSize
	return funcs
}

// DateFormat formats a timestamp with a strftime pattern. It takes the
// value last so it works in pipelines:
//
//	{{ .now | dateformat }}
//	{{ .now | dateformat "%Y-%m-%d" }}
//
// Values that are not timestamps are returned as text.
func DateFormat(args ...any) string {
	if len(args) == 0 {
		return ""
	}
	value := args[len(args)-1]
	pattern := DefaultDatePattern
	if len(args) > 1 {
		pattern = fmt.Sprint(args[0])
	}

	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return ""
		}
		t = *v
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return v
		}
		t = parsed
	default:
		return fmt.Sprint(value)
	}

	out, err := strftime.Format(pattern, t)
	if err != nil {
		return fmt.Sprint(value)
	}
	return out
}

var sizeUnits = []string{"B", "KB", "MB"}

// FileSize formats a byte count as B, KB, MB or GB with one decimal.
// Values of a terabyte or more stay in GB. Non-numeric input is returned
// as text.
func FileSize(value any) string {
	size, ok := toFloat(value)
	if !ok {
		return fmt.Sprint(value)
	}
	for _, unit := range sizeUnits {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f GB", size)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
