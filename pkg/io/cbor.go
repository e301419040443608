package io

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/session"
)

// CBOR documents carry the same fields as JSON ones. Encoding is core
// deterministic (sorted keys, shortest integers), so equal sessions encode
// to equal bytes. IDs and note kinds are written as text.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	encOpts := cbor.CoreDetEncOptions()
	encOpts.TextMarshaler = cbor.TextMarshalerTextString
	var err error
	if cborEnc, err = encOpts.EncMode(); err != nil {
		panic("io: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		TextUnmarshaler:   cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("io: CBOR decoder initialization failed: " + err.Error())
	}
}

// WriteCBOR encodes the session as a CBOR document and writes it to w.
func WriteCBOR(s *session.Session, w io.Writer) error {
	if err := cborEnc.NewEncoder(w).Encode(snapshot(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadCBOR is [ReadJSON] for CBOR documents.
func ReadCBOR(r io.Reader, opts ...session.Option) (*session.Session, error) {
	var doc document
	if err := cborDec.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	return doc.restore(opts...)
}
