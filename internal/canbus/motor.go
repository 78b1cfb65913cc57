// Package canbus drives a steering motor controller over SocketCAN.
package canbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

const (
	// DutyCycleAPI is the extended arbitration ID of the duty-cycle setpoint
	// frame with the device number bits cleared.
	DutyCycleAPI uint32 = 0x02050080
	deviceMask   uint32 = 0x3F

	// MaxDeviceID is the highest device number the ID field can carry.
	MaxDeviceID = int(deviceMask)

	DefaultWriteTimeout = 10 * time.Millisecond
)

// Transmitter is satisfied by *socketcan.Transmitter.
type Transmitter interface {
	TransmitFrame(ctx context.Context, f can.Frame) error
}

// EncodeDuty builds the setpoint frame for deviceID. duty is clamped to
// [-1, 1] and carried as a little-endian float32 in bytes 0..3.
func EncodeDuty(deviceID int, duty float64) (can.Frame, error) {
	if deviceID < 0 || uint32(deviceID) > deviceMask {
		return can.Frame{}, fmt.Errorf("canbus: device id %d out of range [0, %d]", deviceID, deviceMask)
	}
	if math.IsNaN(duty) {
		return can.Frame{}, fmt.Errorf("canbus: duty is NaN")
	}
	duty = math.Max(-1, math.Min(1, duty))

	f := can.Frame{
		ID:         DutyCycleAPI | uint32(deviceID),
		Length:     8,
		IsExtended: true,
	}
	binary.LittleEndian.PutUint32(f.Data[0:4], math.Float32bits(float32(duty)))
	if err := f.Validate(); err != nil {
		return can.Frame{}, fmt.Errorf("canbus: %w", err)
	}
	return f, nil
}

// DecodeDuty is the inverse of EncodeDuty.
func DecodeDuty(f can.Frame) (deviceID int, duty float64, err error) {
	if !f.IsExtended || f.ID&^deviceMask != DutyCycleAPI {
		return 0, 0, fmt.Errorf("canbus: frame 0x%X is not a duty-cycle setpoint", f.ID)
	}
	if f.Length < 4 {
		return 0, 0, fmt.Errorf("canbus: frame 0x%X too short (%d bytes)", f.ID, f.Length)
	}
	bits := binary.LittleEndian.Uint32(f.Data[0:4])
	return int(f.ID & deviceMask), float64(math.Float32frombits(bits)), nil
}

// Motor is a motor driver for one controller on the bus.
type Motor struct {
	tx       Transmitter
	deviceID int
	timeout  time.Duration
	last     float64
}

func NewMotor(tx Transmitter, deviceID int, timeout time.Duration) *Motor {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &Motor{tx: tx, deviceID: deviceID, timeout: timeout}
}

func (m *Motor) Set(duty float64) error {
	f, err := EncodeDuty(m.deviceID, duty)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.tx.TransmitFrame(ctx, f); err != nil {
		return fmt.Errorf("canbus: transmit to device %d: %w", m.deviceID, err)
	}
	m.last = duty
	return nil
}

// Last is the most recent duty successfully transmitted.
func (m *Motor) Last() float64 { return m.last }

// Conn is an open SocketCAN connection with a transmitter.
type Conn struct {
	conn net.Conn
	*socketcan.Transmitter
}

// Dial opens iface (e.g. "can0", "vcan0").
func Dial(ctx context.Context, iface string) (*Conn, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &Conn{conn: conn, Transmitter: socketcan.NewTransmitter(conn)}, nil
}

func (c *Conn) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
