/*
NAME
  main.go

DESCRIPTION
  tx is a command-line client that transmits a short message over an
  ALSA playback/capture device using the AFSK modem and PBCP session
  state machine.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements tx, the transmitter-side command-line client.
package main

import (
	"flag"
	"io"
	"os"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/pbcp/afsk"
	"github.com/ausocean/pbcp/config"
	"github.com/ausocean/pbcp/device/alsa"
	"github.com/ausocean/pbcp/session"
	"github.com/ausocean/utils/logging"
)

// Logging configuration, matching this codebase's other command-line
// tools.
const (
	logPath      = "/var/log/pbcp/tx.log"
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

const windowSize = 4096 // Samples per ReadPCM call; matches alsa's capture chunk.

func main() {
	message := flag.String("message", "", "message to transmit")
	sampleRate := flag.Float64("rate", config.DefaultSampleRate, "PCM sample rate (Hz)")
	baud := flag.Float64("baud", config.DefaultBaud, "symbol rate (baud)")
	fMark := flag.Float64("fmark", config.DefaultFMark, "mark tone frequency (Hz)")
	fSpace := flag.Float64("fspace", config.DefaultFSpace, "space tone frequency (Hz)")
	amplitude := flag.Float64("amplitude", config.DefaultAmplitude, "modem output amplitude [0,1]")
	retries := flag.Int("retries", config.DefaultSyncMaxRetries, "maximum SYNC attempts before giving up")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stdout), logSuppress)

	if *message == "" {
		log.Fatal("no message provided, check usage")
	}

	cfg := config.Config{
		SampleRate:     *sampleRate,
		Baud:           *baud,
		FMark:          *fMark,
		FSpace:         *fSpace,
		Amplitude:      *amplitude,
		SyncMaxRetries: *retries,
	}
	if err := cfg.Validate(); err != nil {
		log.Warning("config fields defaulted", "error", err)
	}

	dev := alsa.New(log)
	if err := dev.Open(uint(cfg.SampleRate)); err != nil {
		log.Fatal("failed to open ALSA device", "error", err)
	}
	defer dev.Close()

	enc, err := afsk.NewEncoder(cfg.AFSK())
	if err != nil {
		log.Fatal("failed to create encoder", "error", err)
	}
	dec, err := afsk.NewDecoder(cfg.AFSK())
	if err != nil {
		log.Fatal("failed to create decoder", "error", err)
	}

	link := session.NewLink(dev, enc, dec, windowSize)
	tx := session.NewTransmitter(link, cfg, log)

	log.Info("starting transmission", "bytes", len(*message))
	if err := tx.Run([]byte(*message)); err != nil {
		log.Fatal("transmission failed", "state", tx.State().String(), "error", err)
	}
	log.Info("transmission complete", "state", tx.State().String())
}
