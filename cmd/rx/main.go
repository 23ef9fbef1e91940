/*
NAME
  main.go

DESCRIPTION
  rx is a command-line client that listens on an ALSA capture/playback
  device for a PBCP session, prints the received message, and notifies
  systemd (if run as a service) once it is ready to receive.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements rx, the receiver-side command-line client.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/pbcp/afsk"
	"github.com/ausocean/pbcp/config"
	"github.com/ausocean/pbcp/device/alsa"
	"github.com/ausocean/pbcp/session"
	"github.com/ausocean/utils/logging"
)

const (
	logPath      = "/var/log/pbcp/rx.log"
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

const windowSize = 4096

func main() {
	sampleRate := flag.Float64("rate", config.DefaultSampleRate, "PCM sample rate (Hz)")
	baud := flag.Float64("baud", config.DefaultBaud, "symbol rate (baud)")
	fMark := flag.Float64("fmark", config.DefaultFMark, "mark tone frequency (Hz)")
	fSpace := flag.Float64("fspace", config.DefaultFSpace, "space tone frequency (Hz)")
	receiverID := flag.Uint("receiver-id", 0, "receiver identity reported in INFO")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stdout), logSuppress)

	cfg := config.Config{
		SampleRate: *sampleRate,
		Baud:       *baud,
		FMark:      *fMark,
		FSpace:     *fSpace,
		ReceiverID: uint32(*receiverID),
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
	rx := session.NewReceiver(link, cfg, log)

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warning("systemd notify failed", "error", err)
	} else if ok {
		log.Debug("notified systemd of readiness")
	}

	log.Info("listening for a session")
	message, err := rx.Run()
	if err != nil {
		log.Fatal("session failed", "state", rx.State().String(), "error", err)
	}
	log.Info("session complete", "state", rx.State().String(), "bytes", len(message))
	fmt.Println(string(message))
}
