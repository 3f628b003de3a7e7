// Package pen decodes smart-pen sensor notifications into calibrated stroke points.
package pen

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

type PacketType byte

const (
	PacketPenDown PacketType = 0x01
	PacketPenMove PacketType = 0x02
	PacketPenUp   PacketType = 0x03
)

const (
	// PacketSize is the full length of a down/move packet: tag, X, Y, pressure.
	PacketSize = 11

	// PressureScale converts the raw uint16 pressure to 0..1.
	PressureScale = 1024
)

var (
	ErrShortPacket        = errors.New("pen packet too short")
	ErrUnknownPacketType  = errors.New("unknown pen packet type")
	ErrInvalidCoordinate  = errors.New("pen packet coordinate is not finite")
	ErrPressureOutOfRange = errors.New("pressure must be between 0 and 65535")
)

func (t PacketType) String() string {
	switch t {
	case PacketPenDown:
		return "down"
	case PacketPenMove:
		return "move"
	case PacketPenUp:
		return "up"
	default:
		return fmt.Sprintf("0x%02x", byte(t))
	}
}

// ParsePacketType accepts "down", "move" or "up".
func ParsePacketType(s string) (PacketType, error) {
	switch s {
	case "down":
		return PacketPenDown, nil
	case "move":
		return PacketPenMove, nil
	case "up":
		return PacketPenUp, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPacketType, s)
}

// Packet is one raw, uncalibrated sensor notification.
type Packet struct {
	Type        PacketType
	X, Y        float64
	RawPressure uint16
}

// Pressure is the raw pressure scaled to 0..1.
func (p Packet) Pressure() float64 {
	return math.Min(float64(p.RawPressure)/PressureScale, 1)
}

// ParsePacket decodes the fixed little-endian layout:
//
//	[0]    type tag
//	[1:5]  float32 X
//	[5:9]  float32 Y
//	[9:11] uint16 pressure
//
// A pen-up needs only the tag byte; trailing fields are ignored.
func ParsePacket(b []byte) (Packet, error) {
	if len(b) < 1 {
		return Packet{}, ErrShortPacket
	}

	pkt := Packet{Type: PacketType(b[0])}
	switch pkt.Type {
	case PacketPenUp:
		return pkt, nil
	case PacketPenDown, PacketPenMove:
	default:
		return Packet{}, ErrUnknownPacketType
	}

	if len(b) < PacketSize {
		return Packet{}, ErrShortPacket
	}

	x := math.Float32frombits(binary.LittleEndian.Uint32(b[1:5]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(b[5:9]))
	if !finite(x) || !finite(y) {
		return Packet{}, ErrInvalidCoordinate
	}

	pkt.X = float64(x)
	pkt.Y = float64(y)
	pkt.RawPressure = binary.LittleEndian.Uint16(b[9:11])
	return pkt, nil
}

// MarshalBinary encodes the packet in the same layout ParsePacket reads.
func (p Packet) MarshalBinary() ([]byte, error) {
	b := make([]byte, PacketSize)
	b[0] = byte(p.Type)
	binary.LittleEndian.PutUint32(b[1:5], math.Float32bits(float32(p.X)))
	binary.LittleEndian.PutUint32(b[5:9], math.Float32bits(float32(p.Y)))
	binary.LittleEndian.PutUint16(b[9:11], p.RawPressure)
	return b, nil
}

// Encode builds a packet from loose values, validating the pressure range.
func Encode(t PacketType, x, y float64, pressure int) ([]byte, error) {
	if pressure < 0 || pressure > math.MaxUint16 {
		return nil, ErrPressureOutOfRange
	}
	return Packet{Type: t, X: x, Y: y, RawPressure: uint16(pressure)}.MarshalBinary()
}

func finite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
