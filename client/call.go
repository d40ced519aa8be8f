package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Call sends input and headers to path and classifies the reply:
//
//   - no response: transport error with status 0
//   - 2xx whose body decodes as O: success
//   - 2xx otherwise: transport error
//   - non-2xx whose body decodes as E: application error
//   - anything else: transport error with the status kept
func Call[O, E any](ctx context.Context, t Transport, path string, input, headers any) Result[O, E] {
	if input == nil {
		input = struct{}{}
	}
	body, err := json.Marshal(input)
	if err != nil {
		return Failure[O](TransportFailure[E](0, nil, fmt.Errorf("encode input: %w", err)), Metadata{})
	}
	hs, err := EncodeHeaders(headers)
	if err != nil {
		return Failure[O](TransportFailure[E](0, nil, err), Metadata{})
	}

	resp, err := t.Do(ctx, &Request{Path: path, Body: body, Headers: hs, ContentType: ContentTypeJSON})
	if err != nil {
		return Failure[O](TransportFailure[E](0, nil, err), Metadata{})
	}
	md := Metadata{Status: resp.Status, Headers: resp.Headers, Duration: resp.Duration}

	if resp.Status >= 200 && resp.Status < 300 {
		var out O
		if err := json.Unmarshal(orNull(resp.Body), &out); err != nil {
			return Failure[O](TransportFailure[E](resp.Status, resp.Body, fmt.Errorf("decode output: %w", err)), md)
		}
		return Success[O, E](out, md)
	}

	if len(bytes.TrimSpace(resp.Body)) > 0 && !IsNull(resp.Body) {
		var app E
		if err := DecodeStrict(resp.Body, &app); err == nil {
			return Failure[O](ApplicationError(resp.Status, app), md)
		}
	}
	return Failure[O](TransportFailure[E](resp.Status, resp.Body, errors.New("unexpected response")), md)
}

func orNull(body []byte) []byte {
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("null")
	}
	return body
}

// EncodeHeaders turns a headers value into request headers. headers must
// encode as a JSON object; string members are sent verbatim, null members
// are skipped and every other member is sent as its JSON text.
func EncodeHeaders(headers any) (map[string]string, error) {
	if headers == nil {
		return nil, nil
	}
	data, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("encode headers: %w", err)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("encode headers: not an object: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(members))
	for k, raw := range members {
		if IsNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out[k] = s
			continue
		}
		out[k] = string(raw)
	}
	return out, nil
}
