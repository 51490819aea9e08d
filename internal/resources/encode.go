package resources

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Encode renders a Value tree back to RON text. Map keys are sorted for
// deterministic output (save-diff friendliness); stable serialization
// is preferred over insertion order wherever ordering is not otherwise
// significant.
func Encode(v Value) string {
	var b strings.Builder
	encodeValue(&b, v, 0)
	return b.String()
}

func encodeValue(b *strings.Builder, v Value, indent int) {
	switch val := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case int:
		b.WriteString(strconv.Itoa(val))
	case int32:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case string:
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n").Replace(val))
		b.WriteByte('"')
	case []Value:
		b.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			encodeValue(b, e, indent)
		}
		b.WriteByte(']')
	case map[string]Value:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('"')
			b.WriteString(k)
			b.WriteString(`": `)
			encodeValue(b, val[k], indent)
		}
		b.WriteByte('}')
	case Struct:
		b.WriteString(val.Name)
		b.WriteByte('(')
		if len(val.Fields) > 0 {
			keys := make([]string, 0, len(val.Fields))
			for k := range val.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for i, k := range keys {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(k)
				b.WriteString(": ")
				encodeValue(b, val.Fields[k], indent)
			}
		} else {
			for i, e := range val.Tuple {
				if i > 0 {
					b.WriteString(", ")
				}
				encodeValue(b, e, indent)
			}
		}
		b.WriteByte(')')
	default:
		b.WriteString(fmt.Sprintf("%v", val))
	}
}
