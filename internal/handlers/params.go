package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/jaytnw/motel-service/internal/apperr"
)

// Params is the loosely typed payload of an /api call: the JSON body for POST, the query
// string otherwise. Accessors coerce between strings, numbers and booleans.
type Params map[string]any

func parseParams(c fiber.Ctx) (Params, error) {
	if c.Method() != fiber.MethodPost {
		p := Params{}
		for k, v := range c.Queries() {
			p[k] = v
		}
		return p, nil
	}
	return decodeBody(c.Body())
}

func decodeBody(body []byte) (Params, error) {
	p := Params{}
	if len(bytes.TrimSpace(body)) == 0 {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, apperr.Validation("JSON invalido")
	}
	return p, nil
}

// operationName reads fn from the query string first, then from the JSON body.
func operationName(c fiber.Ctx, p Params) string {
	if fn := c.Query("fn"); fn != "" {
		return fn
	}
	return p.String("fn")
}

func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Trimmed is String with surrounding whitespace removed.
func (p Params) Trimmed(key string) string {
	return strings.TrimSpace(p.String(key))
}

// Float parses numbers and numeric strings; anything else is 0.
func (p Params) Float(key string) float64 {
	var f float64
	var err error
	switch v := p[key].(type) {
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	case float64:
		f = v
	case bool:
		if v {
			f = 1
		}
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int truncates toward zero.
func (p Params) Int(key string) int {
	return int(p.Float(key))
}

// Whole truncates like Int and reports whether the value had no fractional part.
func (p Params) Whole(key string) (int64, bool) {
	f := p.Float(key)
	return int64(f), f == math.Trunc(f)
}

// Bool accepts JSON booleans, non-zero numbers and strconv.ParseBool spellings.
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// OptionalBool is nil when key is absent.
func (p Params) OptionalBool(key string) *bool {
	if !p.Has(key) {
		return nil
	}
	b := p.Bool(key)
	return &b
}

// Decode re-marshals the value under key into dst.
func (p Params) Decode(key string, dst any) error {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	if s, isString := v.(string); isString {
		return json.Unmarshal([]byte(s), dst)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
