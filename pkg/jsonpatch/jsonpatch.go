// Package jsonpatch applies RFC 6902 JSON Patch documents to typed values.
package jsonpatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// MediaType is the content type of JSON Patch request bodies.
const MediaType = "application/json-patch+json"

// ErrInvalidPatch is returned for malformed documents and failed operations.
var ErrInvalidPatch = errors.New("invalid json patch")

// Apply encodes doc as JSON, applies patch to it and decodes the result
// into out. Unknown members in the patched document are rejected.
func Apply(doc any, patch []byte, out any) error {
	p, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	original, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	patched, err := p.Apply(original)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return nil
}
