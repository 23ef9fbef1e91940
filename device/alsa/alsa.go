/*
NAME
  alsa.go

AUTHOR
  Alan Noble <alan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package alsa provides a real-hardware implementation of device.PCM,
// backed by ALSA capture and playback devices.
package alsa

import (
	"errors"
	"fmt"
	"sync"
	"time"

	yalsa "github.com/yobert/alsa"

	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/pool"
)

const (
	pkg           = "alsa: "
	rbTimeout     = 100 * time.Millisecond
	rbNextTimeout = 2000 * time.Millisecond
	rbLen         = 200
	captureChunk  = 4096 // Samples read from the ALSA buffer per capture iteration.
)

// "running" means the capture goroutine is reading from the ALSA device and
// feeding the ring buffer. "stopped" means the device is closed and Read
// will no longer succeed.
const (
	running = iota + 1
	stopped
)

// A Device is a duplex device.PCM backed by the system's default ALSA
// capture and playback devices. It converts between the modem's float32
// PCM samples and the int16 samples the ALSA binding negotiates.
type Device struct {
	l    logging.Logger
	mu   sync.Mutex
	mode uint8

	sampleRate uint

	capture  *yalsa.Device
	playback *yalsa.Device

	buf *pool.Buffer // Ring buffer of captured PCM, drained by ReadPCM.
}

// New returns a Device that logs to l.
func New(l logging.Logger) *Device { return &Device{l: l} }

// Open negotiates both the capture and playback ALSA devices at sampleRate,
// mono, and starts the capture goroutine. Once opened, ReadPCM and WritePCM
// may be called.
func (d *Device) Open(sampleRate uint) error {
	d.sampleRate = sampleRate

	capture, err := firstDevice(true)
	if err != nil {
		return fmt.Errorf("%sopening capture device: %w", pkg, err)
	}
	playback, err := firstDevice(false)
	if err != nil {
		return fmt.Errorf("%sopening playback device: %w", pkg, err)
	}

	for _, dev := range []*yalsa.Device{capture, playback} {
		if _, err := dev.NegotiateChannels(1); err != nil {
			return fmt.Errorf("%snegotiating channels: %w", pkg, err)
		}
		if _, err := dev.NegotiateRate(int(sampleRate)); err != nil {
			return fmt.Errorf("%snegotiating rate: %w", pkg, err)
		}
		if _, err := dev.NegotiateFormat(yalsa.S16_LE); err != nil {
			return fmt.Errorf("%snegotiating format: %w", pkg, err)
		}
		if _, err := dev.NegotiateBufferSize(captureChunk); err != nil {
			return fmt.Errorf("%snegotiating buffer size: %w", pkg, err)
		}
		if err := dev.Prepare(); err != nil {
			return fmt.Errorf("%spreparing device: %w", pkg, err)
		}
	}

	d.capture = capture
	d.playback = playback
	d.buf = pool.NewBuffer(rbLen, captureChunk*2, rbTimeout) // *2 for int16 byte width.

	d.mu.Lock()
	d.mode = running
	d.mu.Unlock()

	go d.captureLoop()

	d.l.Debug(pkg+"opened", "sampleRate", sampleRate)
	return nil
}

// Close stops the capture goroutine and closes both ALSA devices.
func (d *Device) Close() error {
	d.mu.Lock()
	d.mode = stopped
	d.mu.Unlock()
	if d.capture != nil {
		d.capture.Close()
	}
	if d.playback != nil {
		d.playback.Close()
	}
	return d.buf.Close()
}

// captureLoop continuously reads int16 PCM from the capture device and
// writes it to the ring buffer until the device is stopped.
func (d *Device) captureLoop() {
	raw := make([]int16, captureChunk)
	for {
		d.mu.Lock()
		mode := d.mode
		d.mu.Unlock()
		if mode == stopped {
			return
		}

		n, err := d.capture.Read(raw)
		if err != nil {
			d.l.Error(pkg+"capture read failed", "error", err.Error())
			continue
		}

		bytes := int16ToBytes(raw[:n])
		if _, err := d.buf.Write(bytes); err != nil {
			switch err {
			case pool.ErrDropped:
				d.l.Warning(pkg + "old audio data overwritten")
			default:
				d.l.Error(pkg+"unexpected ringbuffer error", "error", err.Error())
			}
		}
	}
}

// ReadPCM implements device.PCM, blocking until a captured chunk is ready.
func (d *Device) ReadPCM(out []float32) (int, error) {
	chunk, err := d.buf.Next(rbNextTimeout)
	if err != nil {
		return 0, fmt.Errorf("%sringbuffer Next: %w", pkg, err)
	}
	defer chunk.Close()

	samples := bytesToInt16(chunk.Bytes())
	n := copy(out, int16ToFloat32(samples))
	return n, nil
}

// WritePCM implements device.PCM, blocking until the full buffer has been
// written to the playback device.
func (d *Device) WritePCM(buf []float32) error {
	raw := float32ToInt16(buf)
	_, err := d.playback.Write(raw)
	return err
}

func firstDevice(capture bool) (*yalsa.Device, error) {
	cards, err := yalsa.OpenCards()
	if err != nil {
		return nil, err
	}
	defer yalsa.CloseCards(cards)

	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, dev := range devices {
			if dev.Type != yalsa.PCM {
				continue
			}
			if capture && !dev.Record {
				continue
			}
			if !capture && !dev.Play {
				continue
			}
			if err := dev.Open(); err != nil {
				continue
			}
			return dev, nil
		}
	}
	return nil, errors.New(pkg + "no suitable ALSA device found")
}

func float32ToInt16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * 32767)
	}
	return out
}

func int16ToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / 32768
	}
	return out
}

func int16ToBytes(in []int16) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

func bytesToInt16(in []byte) []int16 {
	out := make([]int16, len(in)/2)
	for i := range out {
		out[i] = int16(in[i*2]) | int16(in[i*2+1])<<8
	}
	return out
}
