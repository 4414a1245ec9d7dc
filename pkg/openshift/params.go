package openshift

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Parameter is one named value sent with a request.
type Parameter struct {
	Name  string
	Value interface{}
}

// Parameters is an ordered parameter set. Names are unique; adding an
// existing name replaces its value in place.
type Parameters struct {
	entries []Parameter
}

// NewParameters creates an empty parameter set.
func NewParameters() *Parameters {
	return &Parameters{}
}

// Add sets name to value.
func (p *Parameters) Add(name string, value interface{}) *Parameters {
	for i := range p.entries {
		if p.entries[i].Name == name {
			p.entries[i].Value = value

			return p
		}
	}

	p.entries = append(p.entries, Parameter{Name: name, Value: value})

	return p
}

// AddOptional sets name to value unless value is nil, a nil pointer or an empty string.
func (p *Parameters) AddOptional(name string, value interface{}) *Parameters {
	if isAbsent(value) {
		return p
	}

	return p.Add(name, value)
}

// Get returns the value stored under name.
func (p *Parameters) Get(name string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}

	for _, e := range p.entries {
		if e.Name == name {
			return e.Value, true
		}
	}

	return nil, false
}

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}

	return len(p.entries)
}

// Names returns the parameter names in insertion order.
func (p *Parameters) Names() []string {
	if p == nil {
		return nil
	}

	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		names = append(names, e.Name)
	}

	return names
}

// Entries returns a copy of the parameters in insertion order.
func (p *Parameters) Entries() []Parameter {
	if p == nil {
		return nil
	}

	return append([]Parameter(nil), p.entries...)
}

// Encode returns the form encoding of the set, keeping insertion order.
func (p *Parameters) Encode() string {
	if p == nil {
		return ""
	}

	var b strings.Builder

	for _, e := range p.entries {
		for _, v := range formatValue(e.Value) {
			if b.Len() > 0 {
				b.WriteByte('&')
			}

			b.WriteString(url.QueryEscape(e.Name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}

	return b.String()
}

// Values returns the set as url.Values.
func (p *Parameters) Values() url.Values {
	values := url.Values{}

	if p == nil {
		return values
	}

	for _, e := range p.entries {
		values[e.Name] = append(values[e.Name], formatValue(e.Value)...)
	}

	return values
}

// StringValue renders the value for name the way it is sent on the wire.
func (p *Parameters) StringValue(name string) (string, bool) {
	v, ok := p.Get(name)
	if !ok {
		return "", false
	}

	return strings.Join(formatValue(v), ","), true
}

func isAbsent(value interface{}) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.Len() == 0
	}

	return isNilPointer(value)
}

func isNilPointer(value interface{}) bool {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func formatValue(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{v}
	case bool:
		return []string{strconv.FormatBool(v)}
	case int:
		return []string{strconv.Itoa(v)}
	case int64:
		return []string{strconv.FormatInt(v, 10)}
	case []string:
		return v
	case fmt.Stringer:
		return []string{v.String()}
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Ptr && !rv.IsNil() {
			return formatValue(rv.Elem().Interface())
		}

		return []string{fmt.Sprint(value)}
	}
}
