package codec

import (
	"encoding/binary"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// Pubkey is a 32-byte on-chain account address.
type Pubkey [32]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// PubkeyFromBase58 parses a base-58 address. The length is checked so a
// truncated key cannot silently become a zero-padded one.
func PubkeyFromBase58(s string) (Pubkey, error) {
	var p Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return p, err
	}
	if len(raw) != len(p) {
		return p, ErrMalformedPayload
	}
	copy(p[:], raw)
	return p, nil
}

// Uint128 holds a little-endian 128-bit unsigned value split into two words.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

func (u Uint128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(u.Lo))
}

// Decimal renders the value for a Postgres numeric column.
func (u Uint128) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(u.BigInt(), 0)
}

// Int128 is the signed counterpart, two's complement over 128 bits.
type Int128 struct {
	Lo uint64
	Hi uint64
}

func (i Int128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(i.Hi)
	v.Lsh(v, 64)
	v.Add(v, new(big.Int).SetUint64(i.Lo))
	if i.Hi&(1<<63) != 0 {
		max := new(big.Int).Lsh(big.NewInt(1), 128)
		v.Sub(v, max)
	}
	return v
}

func (i Int128) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(i.BigInt(), 0)
}

// reader consumes a borsh-layout byte buffer. Errors are sticky: once a read
// runs past the end every later read returns zero values and Err() reports
// the failure, so decoders can read a full struct and check once.
type reader struct {
	buf    []byte
	off    int
	failed bool
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) take(n int) []byte {
	if r.failed || r.off+n > len(r.buf) {
		r.failed = true
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) Bool() bool {
	return r.U8() != 0
}

func (r *reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) I64() int64 {
	return int64(r.U64())
}

func (r *reader) U128() Uint128 {
	lo := r.U64()
	hi := r.U64()
	return Uint128{Lo: lo, Hi: hi}
}

func (r *reader) I128() Int128 {
	lo := r.U64()
	hi := r.U64()
	return Int128{Lo: lo, Hi: hi}
}

// OptionU16 reads a borsh Option<u16>: a one-byte tag followed by the value
// when the tag is 1.
func (r *reader) OptionU16() (uint16, bool) {
	if r.U8() == 0 {
		return 0, false
	}
	return r.U16(), true
}

func (r *reader) Bytes32() [32]byte {
	var out [32]byte
	b := r.take(32)
	if b != nil {
		copy(out[:], b)
	}
	return out
}

func (r *reader) Pubkey() Pubkey {
	var p Pubkey
	b := r.take(32)
	if b != nil {
		copy(p[:], b)
	}
	return p
}

// Remaining reports the unread byte count; decoders use it to distinguish
// schema revisions that appended fields.
func (r *reader) Remaining() int {
	if r.failed {
		return 0
	}
	return len(r.buf) - r.off
}

func (r *reader) Err() error {
	if r.failed {
		return ErrMalformedPayload
	}
	return nil
}
