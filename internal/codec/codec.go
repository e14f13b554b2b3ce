// Package codec decodes discriminator-tagged program instructions and event
// logs into typed values. Decoders never touch process state; a decode either
// yields a Message or fails with ErrMalformedPayload / ErrUnknownDiscriminator.
package codec

import (
	"encoding/hex"
	"errors"
)

var (
	// ErrMalformedPayload reports a buffer shorter than the schema requires
	// or a missing expected account slot.
	ErrMalformedPayload = errors.New("codec: malformed payload")

	// ErrUnknownDiscriminator reports a tag with no registered decoder.
	ErrUnknownDiscriminator = errors.New("codec: unknown discriminator")
)

// Message is the sum of all decoded instruction and event variants.
type Message interface {
	message()
}

// Discriminator is the 8-byte tag prefixing instruction data. Event logs use
// a fixed prefix followed by a second 8-byte variant tag.
type Discriminator [8]byte

func disc(s string) Discriminator {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 8 {
		panic("codec: bad discriminator literal " + s)
	}
	var d Discriminator
	copy(d[:], b)
	return d
}

// eventLogPrefix marks the self-CPI instruction the program uses to emit
// event logs. The variant tag follows it.
var eventLogPrefix = disc("e445a52e51cb9a1d")

var eventDecoders = map[Discriminator]func(*reader) Message{
	disc("40c6cde8260871e2"): decodeSwapEvent,
	disc("c590929542a45f10"): decodeMintEvent,
	disc("21592f75527ceefa"): decodeBurnEvent,
	disc("e5a2d3279ffb184e"): decodeAdjustLiquidityEvent,
	disc("760032c437ff792b"): decodePairCreatedEvent,
	disc("2c063cf58e26a6f7"): decodeUpdatePairEvent,
	disc("f0845ce3d148b2a9"): decodeUserPositionCreatedEvent,
	disc("53a8c558592a3a66"): decodeUserPositionUpdatedEvent,
	disc("dc89d903f2beeed8"): decodeUserPositionLiquidatedEvent,
	disc("63f6437e2cfcc121"): decodeAdjustCollateralEvent,
	disc("9908a974cf749b80"): decodeAdjustDebtEvent,
	disc("ffe3206bd3f6274e"): decodeUserLiquidityPositionUpdatedEvent,
	disc("2231eff2e42d1461"): decodeFlashloanEvent,
}

var instructionDecoders = map[Discriminator]func(*reader, []Pubkey) (Message, error){
	disc("f8c69e91e17587c8"): decodeSwapInstruction,
	disc("b59d59438fb63448"): decodeAddLiquidityInstruction,
	disc("5055d14818ceb16c"): decodeRemoveLiquidityInstruction,
	disc("7f52792aa1b0f9ce"): decodeAddCollateralInstruction,
	disc("56de82565c144841"): decodeRemoveCollateralInstruction,
	disc("e4fd83cacf745912"): decodeBorrowInstruction,
	disc("ea674352d0eadba6"): decodeRepayInstruction,
	disc("dfb3e27d302e274a"): decodeLiquidateInstruction,
}

// Decode maps a raw instruction (discriminator-prefixed data plus its ordered
// account list) to a typed Message. Event logs ignore accounts; instruction
// decoders arrange them into named slots.
func Decode(data []byte, accounts []Pubkey) (Message, error) {
	if len(data) < 8 {
		return nil, ErrMalformedPayload
	}
	var tag Discriminator
	copy(tag[:], data[:8])

	if tag == eventLogPrefix {
		if len(data) < 16 {
			return nil, ErrMalformedPayload
		}
		var variant Discriminator
		copy(variant[:], data[8:16])
		decode, ok := eventDecoders[variant]
		if !ok {
			return nil, ErrUnknownDiscriminator
		}
		r := newReader(data[16:])
		msg := decode(r)
		if err := r.Err(); err != nil {
			return nil, err
		}
		return msg, nil
	}

	decode, ok := instructionDecoders[tag]
	if !ok {
		return nil, ErrUnknownDiscriminator
	}
	return decode(newReader(data[8:]), accounts)
}

// IsEventLog reports whether the instruction data carries an event log.
func IsEventLog(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	var tag Discriminator
	copy(tag[:], data[:8])
	return tag == eventLogPrefix
}
