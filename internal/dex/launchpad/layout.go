// ==============================================
// File: internal/dex/launchpad/layout.go
// ==============================================
package launchpad

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// FieldKind is the wire type of a layout field.
type FieldKind uint8

const (
	KindPublicKey FieldKind = iota + 1
	KindUint8
	KindBool
	KindUint64
	KindInt64
	KindString // u32 little-endian length prefix followed by UTF-8 bytes
)

// Follows places a field immediately after the previous variable-length field.
const Follows = -1

// Field describes one value of an account layout.
// For KindString the width is the length prefix only.
type Field struct {
	Name   string
	Offset int
	Width  int
	Kind   FieldKind
}

// Layout is a versioned schema descriptor for a fixed-offset account.
type Layout struct {
	Name      string
	Version   uint8
	MinLength int
	Fields    []Field
}

// Field looks up a field by name.
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Bonding curve account, current program layout.
// The 8-byte anchor discriminator at offset 0 is not interpreted.
var BondingCurveLayout = &Layout{
	Name:      "bonding_curve",
	Version:   2,
	MinLength: 255,
	Fields: []Field{
		{Name: "creator", Offset: 8, Width: 32, Kind: KindPublicKey},
		{Name: "token_mint", Offset: 40, Width: 32, Kind: KindPublicKey},
		{Name: "real_sol_reserves", Offset: 152, Width: 8, Kind: KindUint64},
		{Name: "real_token_reserves", Offset: 160, Width: 8, Kind: KindUint64},
		{Name: "graduated", Offset: 187, Width: 1, Kind: KindBool},
		{Name: "dev_supply", Offset: 204, Width: 8, Kind: KindUint64},
	},
}

// Social registry claim.
// verified and registered_at offsets are unconfirmed against the program's IDL.
var RegistryLayout = &Layout{
	Name:      "social_registry",
	Version:   1,
	MinLength: 204,
	Fields: []Field{
		{Name: "token_mint", Offset: 8, Width: 32, Kind: KindPublicKey},
		{Name: "creator", Offset: 40, Width: 32, Kind: KindPublicKey},
		{Name: "platform", Offset: 72, Width: 1, Kind: KindUint8},
		{Name: "handle", Offset: 73, Width: 4, Kind: KindString},
		{Name: "verified", Offset: 127, Width: 1, Kind: KindBool},
		{Name: "registered_at", Offset: 196, Width: 8, Kind: KindInt64},
	},
}

// Token factory metadata account.
var TokenMetadataLayout = &Layout{
	Name:      "token_metadata",
	Version:   1,
	MinLength: 76,
	Fields: []Field{
		{Name: "mint", Offset: 8, Width: 32, Kind: KindPublicKey},
		{Name: "name", Offset: 72, Width: 4, Kind: KindString},
		{Name: "symbol", Offset: Follows, Width: 4, Kind: KindString},
		{Name: "uri", Offset: Follows, Width: 4, Kind: KindString},
	},
}

// SPL token account (165 bytes); only the fields the engine reads.
var TokenAccountLayout = &Layout{
	Name:      "token_account",
	Version:   1,
	MinLength: 165,
	Fields: []Field{
		{Name: "mint", Offset: 0, Width: 32, Kind: KindPublicKey},
		{Name: "owner", Offset: 32, Width: 32, Kind: KindPublicKey},
		{Name: "amount", Offset: 64, Width: 8, Kind: KindUint64},
	},
}

// fieldReader decodes named fields of a layout from a buffer.
// The first error sticks; later reads return zero values.
type fieldReader struct {
	layout *Layout
	data   []byte
	cursor int
	err    error
}

func newFieldReader(layout *Layout, data []byte) (*fieldReader, error) {
	if len(data) < layout.MinLength {
		return nil, fmt.Errorf("%w: %s requires at least %d bytes, got %d",
			ErrMalformedAccount, layout.Name, layout.MinLength, len(data))
	}
	return &fieldReader{layout: layout, data: data}, nil
}

// seek positions a decoder at the named field and checks the fixed part fits.
func (r *fieldReader) seek(name string, kind FieldKind) (*bin.Decoder, int) {
	if r.err != nil {
		return nil, 0
	}
	f, ok := r.layout.Field(name)
	if !ok {
		r.err = fmt.Errorf("layout %s has no field %q", r.layout.Name, name)
		return nil, 0
	}
	if f.Kind != kind {
		r.err = fmt.Errorf("layout %s field %q is not of kind %d", r.layout.Name, name, kind)
		return nil, 0
	}

	offset := f.Offset
	if offset == Follows {
		offset = r.cursor
	}
	if offset < 0 || offset+f.Width > len(r.data) {
		r.err = fmt.Errorf("%w: %s.%s at %d overruns %d bytes",
			ErrMalformedAccount, r.layout.Name, name, offset, len(r.data))
		return nil, 0
	}
	return bin.NewBinDecoder(r.data[offset:]), offset
}

func (r *fieldReader) fail(name string, err error) bool {
	if err == nil {
		return false
	}
	r.err = fmt.Errorf("%w: %s.%s: %v", ErrMalformedAccount, r.layout.Name, name, err)
	return true
}

func (r *fieldReader) publicKey(name string) solana.PublicKey {
	dec, offset := r.seek(name, KindPublicKey)
	if dec == nil {
		return solana.PublicKey{}
	}
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if r.fail(name, err) {
		return solana.PublicKey{}
	}
	r.cursor = offset + solana.PublicKeyLength
	return solana.PublicKeyFromBytes(raw)
}

func (r *fieldReader) uint8(name string) uint8 {
	dec, offset := r.seek(name, KindUint8)
	if dec == nil {
		return 0
	}
	v, err := dec.ReadUint8()
	if r.fail(name, err) {
		return 0
	}
	r.cursor = offset + 1
	return v
}

// flag reads a one-byte boolean; only 1 counts as set.
func (r *fieldReader) flag(name string) bool {
	dec, offset := r.seek(name, KindBool)
	if dec == nil {
		return false
	}
	v, err := dec.ReadUint8()
	if r.fail(name, err) {
		return false
	}
	r.cursor = offset + 1
	return v == 1
}

func (r *fieldReader) uint64(name string) uint64 {
	dec, offset := r.seek(name, KindUint64)
	if dec == nil {
		return 0
	}
	v, err := dec.ReadUint64(bin.LE)
	if r.fail(name, err) {
		return 0
	}
	r.cursor = offset + 8
	return v
}

func (r *fieldReader) int64(name string) int64 {
	dec, offset := r.seek(name, KindInt64)
	if dec == nil {
		return 0
	}
	v, err := dec.ReadInt64(bin.LE)
	if r.fail(name, err) {
		return 0
	}
	r.cursor = offset + 8
	return v
}

func (r *fieldReader) string(name string) string {
	dec, offset := r.seek(name, KindString)
	if dec == nil {
		return ""
	}
	length, err := dec.ReadUint32(bin.LE)
	if r.fail(name, err) {
		return ""
	}
	if int(length) > len(r.data)-offset-4 {
		r.err = fmt.Errorf("%w: %s.%s length %d overruns buffer",
			ErrMalformedAccount, r.layout.Name, name, length)
		return ""
	}
	raw, err := dec.ReadNBytes(int(length))
	if r.fail(name, err) {
		return ""
	}
	r.cursor = offset + 4 + int(length)
	return string(raw)
}

// fieldWriter is the inverse of fieldReader, used to build account fixtures.
type fieldWriter struct {
	layout *Layout
	data   []byte
	cursor int
	err    error
}

func newFieldWriter(layout *Layout) *fieldWriter {
	return &fieldWriter{layout: layout, data: make([]byte, layout.MinLength)}
}

func (w *fieldWriter) put(name string, kind FieldKind, encode func(enc *bin.Encoder) error) {
	if w.err != nil {
		return
	}
	f, ok := w.layout.Field(name)
	if !ok || f.Kind != kind {
		w.err = fmt.Errorf("layout %s has no %q field of kind %d", w.layout.Name, name, kind)
		return
	}

	buf := new(bytes.Buffer)
	if err := encode(bin.NewBinEncoder(buf)); err != nil {
		w.err = fmt.Errorf("encode %s.%s: %w", w.layout.Name, name, err)
		return
	}

	offset := f.Offset
	if offset == Follows {
		offset = w.cursor
	}
	end := offset + buf.Len()
	if end > len(w.data) {
		w.data = append(w.data, make([]byte, end-len(w.data))...)
	}
	copy(w.data[offset:end], buf.Bytes())
	w.cursor = end
}

func (w *fieldWriter) publicKey(name string, v solana.PublicKey) {
	w.put(name, KindPublicKey, func(enc *bin.Encoder) error { return enc.WriteBytes(v[:], false) })
}

func (w *fieldWriter) uint8(name string, v uint8) {
	w.put(name, KindUint8, func(enc *bin.Encoder) error { return enc.WriteUint8(v) })
}

func (w *fieldWriter) flag(name string, v bool) {
	var b uint8
	if v {
		b = 1
	}
	w.put(name, KindBool, func(enc *bin.Encoder) error { return enc.WriteUint8(b) })
}

func (w *fieldWriter) uint64(name string, v uint64) {
	w.put(name, KindUint64, func(enc *bin.Encoder) error { return enc.WriteUint64(v, bin.LE) })
}

func (w *fieldWriter) int64(name string, v int64) {
	w.put(name, KindInt64, func(enc *bin.Encoder) error { return enc.WriteInt64(v, bin.LE) })
}

func (w *fieldWriter) string(name string, v string) {
	w.put(name, KindString, func(enc *bin.Encoder) error {
		if err := enc.WriteUint32(uint32(len(v)), bin.LE); err != nil {
			return err
		}
		return enc.WriteBytes([]byte(v), false)
	})
}

func (w *fieldWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.data, nil
}
