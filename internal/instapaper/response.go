package instapaper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Payload is the body of a Response: either a decoded JSON value or the raw
// bytes when the body was not JSON or JSON decoding was not requested.
type Payload interface {
	isPayload()
}

// JSONPayload holds a decoded JSON document.
type JSONPayload struct {
	Value any
}

// RawPayload holds a body exactly as the server sent it.
type RawPayload []byte

func (JSONPayload) isPayload() {}
func (RawPayload) isPayload()  {}

// Response is the result of Client.Request.
type Response struct {
	StatusCode int
	Header     http.Header
	Data       Payload
}

// Raw returns the body for raw payloads.
func (r *Response) Raw() ([]byte, bool) {
	raw, ok := r.Data.(RawPayload)
	return raw, ok
}

// decodePayload decodes body as a single JSON document and falls back to
// the raw body. Numbers stay json.Number so 64-bit ids keep their precision.
func decodePayload(body []byte) Payload {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return RawPayload(body)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return RawPayload(body)
	}
	return JSONPayload{Value: v}
}

// checkErrorEnvelope reports a RemoteAPIError when the payload is a
// single-element list holding an error element.
func checkErrorEnvelope(p Payload) error {
	doc, ok := p.(JSONPayload)
	if !ok {
		return nil
	}
	list, ok := doc.Value.([]any)
	if !ok || len(list) != 1 {
		return nil
	}
	item, ok := list[0].(map[string]any)
	if !ok || item["type"] != "error" {
		return nil
	}
	return errorFromItem(item)
}

// collect walks a list response. Elements of the given kind are built in
// order, an error element aborts the walk, everything else is skipped.
func collect[T any](resp *Response, kind string, build func(map[string]any) T) ([]T, error) {
	doc, ok := resp.Data.(JSONPayload)
	if !ok {
		raw, _ := resp.Raw()
		return nil, fmt.Errorf("expected a JSON list, got a %d byte raw body", len(raw))
	}
	list, ok := doc.Value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON list, got %T", doc.Value)
	}

	out := make([]T, 0, len(list))
	for _, el := range list {
		item, ok := el.(map[string]any)
		if !ok {
			continue
		}
		switch item["type"] {
		case "error":
			return nil, errorFromItem(item)
		case kind:
			out = append(out, build(item))
		}
	}
	return out, nil
}
