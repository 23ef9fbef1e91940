/*
NAME
  main.go

DESCRIPTION
  loopback runs a transmitter and a receiver against each other over an
  in-memory PCM channel, with no audio hardware required. It reports the
  bit error rate between what was sent and what was received, the
  spectral peak/floor ratio of the transmitted audio, and writes that
  audio to a WAV file for inspection.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements loopback, the hardware-free self-test tool.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/ausocean/pbcp/afsk"
	"github.com/ausocean/pbcp/codec/wav"
	"github.com/ausocean/pbcp/config"
	"github.com/ausocean/pbcp/device"
	"github.com/ausocean/pbcp/device/loopback"
	"github.com/ausocean/pbcp/diagnostics"
	"github.com/ausocean/pbcp/session"
	"github.com/ausocean/utils/logging"
)

const windowSize = 1 << 16

// recordingPCM wraps a device.PCM, appending every sample written to an
// in-memory buffer so the transmitted audio can be saved as a WAV file
// after the run.
type recordingPCM struct {
	device.PCM
	mu      sync.Mutex
	written []float32
}

func (r *recordingPCM) WritePCM(buf []float32) error {
	r.mu.Lock()
	r.written = append(r.written, buf...)
	r.mu.Unlock()
	return r.PCM.WritePCM(buf)
}

func main() {
	message := flag.String("message", "Hello, World!", "message to loop back")
	wavPath := flag.String("wav", "loopback.wav", "path to write the transmitted audio as WAV")
	capabilities := flag.Uint("capabilities", 0, "capability bitfield the receiver advertises")
	flag.Parse()

	log := logging.New(logging.Info, os.Stdout, false)

	cfg := config.Config{Capabilities: uint8(*capabilities)}
	if err := cfg.Validate(); err != nil {
		log.Debug("config fields defaulted", "error", err)
	}

	pair := loopback.NewPair(windowSize)
	txDevice := &recordingPCM{PCM: pair.A()}

	txEnc, err := afsk.NewEncoder(cfg.AFSK())
	if err != nil {
		log.Fatal("NewEncoder (tx)", "error", err)
	}
	txDec, err := afsk.NewDecoder(cfg.AFSK())
	if err != nil {
		log.Fatal("NewDecoder (tx)", "error", err)
	}
	rxEnc, err := afsk.NewEncoder(cfg.AFSK())
	if err != nil {
		log.Fatal("NewEncoder (rx)", "error", err)
	}
	rxDec, err := afsk.NewDecoder(cfg.AFSK())
	if err != nil {
		log.Fatal("NewDecoder (rx)", "error", err)
	}

	txLink := session.NewLink(txDevice, txEnc, txDec, windowSize)
	rxLink := session.NewLink(pair.B(), rxEnc, rxDec, windowSize)

	tx := session.NewTransmitter(txLink, cfg, log)
	rx := session.NewReceiver(rxLink, cfg, log)

	sent := []byte(*message)
	txErrCh := make(chan error, 1)
	type rxResult struct {
		msg []byte
		err error
	}
	rxCh := make(chan rxResult, 1)

	go func() { txErrCh <- tx.Run(sent) }()
	go func() {
		msg, err := rx.Run()
		rxCh <- rxResult{msg, err}
	}()

	txErr := <-txErrCh
	rxRes := <-rxCh

	if txErr != nil {
		log.Error("transmitter failed", "error", txErr)
	}
	if rxRes.err != nil {
		log.Error("receiver failed", "error", rxRes.err)
	}
	if txErr != nil || rxRes.err != nil {
		os.Exit(1)
	}

	if !bytes.Equal(sent, rxRes.msg) {
		ber := diagnostics.BitErrorRate(sent, rxRes.msg)
		log.Error("message mismatch", "sent", string(sent), "received", string(rxRes.msg), "bitErrorRate", ber)
	} else {
		log.Info("message received intact", "bytes", len(rxRes.msg))
	}

	peak, floor, err := diagnostics.SpectralSplatter(txDevice.written)
	if err != nil {
		log.Warning("spectral analysis failed", "error", err)
	} else {
		log.Info("spectral splatter", "peak", peak, "floor", floor, "ratio", peak/floor)
	}

	w := wav.NewMono16(int(cfg.SampleRate))
	if _, err := w.WriteFloatSamples(txDevice.written); err != nil {
		log.Fatal("failed to encode WAV", "error", err)
	}
	if err := os.WriteFile(*wavPath, w.Audio, 0644); err != nil {
		log.Fatal("failed to write WAV file", "error", err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *wavPath, len(w.Audio))
}
