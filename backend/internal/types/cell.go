package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind tells which field of a Cell carries the value.
type CellKind uint8

const (
	KindNull CellKind = iota
	KindNumber
	KindText
)

func (k CellKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Cell is a single scalar of a Dataset: absent, numeric or text.
type Cell struct {
	Kind   CellKind
	Number decimal.Decimal
	Text   string
}

func Null() Cell { return Cell{} }

func Number(d decimal.Decimal) Cell { return Cell{Kind: KindNumber, Number: d} }

func NumberFromInt(n int64) Cell { return Number(decimal.NewFromInt(n)) }

func NumberFromFloat(f float64) Cell { return Number(decimal.NewFromFloat(f)) }

func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

func (c Cell) IsNull() bool { return c.Kind == KindNull }
func (c Cell) IsNumber() bool { return c.Kind == KindNumber }

// IsZero reports numeric zero. Text and null cells are never zero.
func (c Cell) IsZero() bool {
	return c.Kind == KindNumber && c.Number.IsZero()
}

// String renders the cell the way it would appear in a CSV cell.
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return c.Number.String()
	case KindText:
		return c.Text
	default:
		return ""
	}
}

// Key is a grouping key that keeps kinds apart, so the text "2" and the
// number 2 never collide while 2 and 2.00 do.
func (c Cell) Key() string {
	switch c.Kind {
	case KindNumber:
		return "n:" + c.Number.String()
	case KindText:
		return "t:" + c.Text
	default:
		return "z:"
	}
}

// Equal compares kind and value; numbers compare by value.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindNumber:
		return c.Number.Equal(o.Number)
	case KindText:
		return c.Text == o.Text
	default:
		return true
	}
}

// Value returns the cell as a plain Go value: nil, float64 or string.
// Spreadsheet writers take this form.
func (c Cell) Value() interface{} {
	switch c.Kind {
	case KindNumber:
		return c.Number.InexactFloat64()
	case KindText:
		return c.Text
	default:
		return nil
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindNumber:
		return []byte(c.Number.String()), nil
	case KindText:
		return json.Marshal(c.Text)
	default:
		return []byte("null"), nil
	}
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = Null()
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
	case bytes.Equal(data, []byte("true")):
		*c = Text("TRUE")
	case bytes.Equal(data, []byte("false")):
		*c = Text("FALSE")
	default:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return fmt.Errorf("cell: unsupported value %s", data)
		}
		*c = Number(d)
	}
	return nil
}

// nullTokens are the raw strings treated as absent when coercing untyped input.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
	"-NaN": {},
	"#NA":  {},
	"-nan": {},
	"n.a.": {},
	"N.A.": {},
}

var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseCell coerces an untyped (CSV) value: null tokens become null,
// anything decimal-parseable (optionally with "," thousands grouping)
// becomes a number, the rest stays text.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if _, ok := nullTokens[s]; ok {
		return Null()
	}
	if groupedNumber.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return Number(d)
	}
	return Text(raw)
}
