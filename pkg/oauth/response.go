package oauth

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Response is a decoded provider response body.
type Response map[string]any

// Value returns the value stored under key. Missing keys and nil values report false.
func (r Response) Value(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value under key rendered as a string.
// Numbers are rendered in decimal; empty strings, maps and slices report false.
func (r Response) String(key string) (string, bool) {
	v, ok := r.Value(key)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case []string:
		if len(val) == 0 {
			return "", false
		}
		return val[0], val[0] != ""
	default:
		return "", false
	}
}

// Int64 returns the value under key as an integer. Numeric strings are accepted.
func (r Response) Int64(key string) (int64, bool) {
	v, ok := r.Value(key)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int64(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
		return 0, false
	}
	s, ok := r.String(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Decode parses a raw response body in the given format.
// An empty body decodes to an empty Response.
func Decode(body []byte, format ResponseFormat) (Response, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Response{}, nil
	}

	var (
		resp Response
		err  error
	)
	switch format {
	case FormatJSON:
		resp, err = decodeJSON(body)
	case FormatQueryString:
		resp, err = decodeQuery(body)
	case FormatCSV:
		resp, err = decodeCSV(body)
	case FormatXML:
		resp, err = decodeXML(body)
	}
	if err != nil {
		return nil, errors.Join(ErrMalformedResponse, err)
	}
	return resp, nil
}

func decodeJSON(body []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if out == nil {
		return nil, errors.New("decode json: body is not an object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: trailing data after object")
	}
	return normalizeJSON(out), nil
}

// normalizeJSON turns nested objects into Response values so lookups work at every level.
func normalizeJSON(m map[string]any) Response {
	out := make(Response, len(m))
	for k, v := range m {
		out[k] = normalizeJSONValue(v)
	}
	return out
}

func normalizeJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeJSON(val)
	case []any:
		for i := range val {
			val[i] = normalizeJSONValue(val[i])
		}
		return val
	default:
		return v
	}
}

func decodeQuery(body []byte) (Response, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("decode query string: %w", err)
	}
	out := make(Response, len(values))
	for k, v := range values {
		if len(v) == 1 {
			out[k] = v[0]
			continue
		}
		out[k] = v
	}
	return out, nil
}

// decodeCSV expects a header row followed by exactly one value row.
func decodeCSV(body []byte) (Response, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(records) != 2 {
		return nil, fmt.Errorf("decode csv: want header and one value row, got %d rows", len(records))
	}

	header, row := records[0], records[1]
	out := make(Response, len(header))
	for i, key := range header {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("decode csv: empty column name at %d", i)
		}
		out[key] = row[i]
	}
	return out, nil
}

func decodeXML(body []byte) (Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("decode xml: no root element")
	}
	out := xmlElement(root)
	if len(root.ChildElements()) == 0 {
		if text := strings.TrimSpace(root.Text()); text != "" {
			out[root.Tag] = text
		}
	}
	return out, nil
}

// xmlTextKey holds the text of a leaf element that also carries attributes.
const xmlTextKey = "#text"

// xmlElement maps attributes and child elements to keys. Repeated names collect
// into []any. Leaves become their trimmed text, or a Response with the text under
// "#text" when they carry attributes. An attribute named like a child element is
// kept as "@name".
func xmlElement(el *etree.Element) Response {
	out := make(Response)
	for _, child := range el.ChildElements() {
		var v any
		switch {
		case len(child.ChildElements()) > 0:
			v = xmlElement(child)
		case len(xmlAttrs(child)) > 0:
			leaf := xmlElement(child)
			if text := strings.TrimSpace(child.Text()); text != "" {
				leaf[xmlTextKey] = text
			}
			v = leaf
		default:
			v = strings.TrimSpace(child.Text())
		}

		switch existing := out[child.Tag].(type) {
		case nil:
			out[child.Tag] = v
		case []any:
			out[child.Tag] = append(existing, v)
		default:
			out[child.Tag] = []any{existing, v}
		}
	}
	for _, a := range xmlAttrs(el) {
		key := a.Key
		if _, taken := out[key]; taken {
			key = "@" + key
		}
		out[key] = a.Value
	}
	return out
}

// xmlAttrs returns the element attributes without namespace declarations.
func xmlAttrs(el *etree.Element) []etree.Attr {
	attrs := make([]etree.Attr, 0, len(el.Attr))
	for _, a := range el.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		attrs = append(attrs, a)
	}
	return attrs
}
