// Command wind-sensor decodes anemometer and wind vane pulses from GPIO and
// publishes wind readings to MQTT, with optional NMEA 0183 output on serial.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/inconshreveable/log15"

	"github.com/sweeney/wind-sensor/internal/config"
	"github.com/sweeney/wind-sensor/internal/gpio"
	"github.com/sweeney/wind-sensor/internal/logic"
	"github.com/sweeney/wind-sensor/internal/mqtt"
	"github.com/sweeney/wind-sensor/internal/nmea"
	"github.com/sweeney/wind-sensor/internal/status"
	"github.com/sweeney/wind-sensor/internal/web"
)

var logger = log.New("module", "main")

func main() {
	period := flag.Duration("period", 200*time.Millisecond, "Decode cycle period")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	pinSpeed := flag.Int("pin-speed", gpio.DefaultPinSpeed, "BCM pin number for the anemometer")
	pinDir := flag.Int("pin-dir", gpio.DefaultPinDir, "BCM pin number for the wind vane")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	nmeaDev := flag.String("nmea", "", `NMEA 0183 output device ("-" for stdout, empty to disable)`)
	settingsPath := flag.String("settings", "/etc/wind-sensor/settings.yaml", "Settings file path (empty for in-memory)")
	verbose := flag.Bool("v", false, "Enable debug logging")

	flag.Parse()

	lvl := log.LvlInfo
	if *verbose {
		lvl = log.LvlDebug
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StdoutHandler))

	if err := run(*period, *broker, *heartbeat, *pinSpeed, *pinDir, *httpAddr, *nmeaDev, *settingsPath); err != nil {
		logger.Crit("fatal", "err", err)
		os.Exit(1)
	}
}

func run(period time.Duration, broker string, heartbeat time.Duration, pinSpeed, pinDir int, httpAddr, nmeaDev, settingsPath string) error {
	store, err := config.Load(settingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// All edge timestamps and staleness checks share one monotonic
	// microsecond clock anchored at process start.
	startWall := time.Now()
	micros := func() uint64 {
		return uint64(time.Since(startWall).Microseconds())
	}

	capture := logic.NewCapture()

	watcher := gpio.NewRealWatcher(pinSpeed, pinDir, micros)
	if err := watcher.Start(func(line gpio.Line, t uint64) {
		switch line {
		case gpio.LineSpeed:
			capture.SpeedEdge(t)
		case gpio.LineDir:
			capture.DirEdge(t)
		}
	}); err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	var nmeaOut nmea.Writer
	switch nmeaDev {
	case "":
	case "-":
		nmeaOut = nmea.NewStreamWriter(os.Stdout)
	default:
		nmeaOut, err = nmea.OpenSerial(nmeaDev)
		if err != nil {
			return fmt.Errorf("init nmea: %w", err)
		}
		defer nmeaOut.Close()
	}

	tracker := status.NewTracker(startWall, status.Config{
		PeriodMs:    period.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPPort:    httpAddr,
		NMEADevice:  nmeaDev,
		ConfigPath:  settingsPath,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warn("publish startup event", "err", err)
	} else {
		logger.Info("published startup event")
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, store)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", "addr", httpAddr)
	}

	logger.Info("started",
		"period", period,
		"broker", broker,
		"heartbeat", heartbeat,
		"pin_speed", pinSpeed,
		"pin_dir", pinDir,
		"nmea", nmeaDev)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(capture, publisher, publisher, tracker, store, nmeaOut, heartbeat, time.Now, micros, ticker.C, sigCh)
}

// runLoop is the decode scheduler. It is separated from run so tests can
// drive it with a fake tick channel and clocks.
func runLoop(capture *logic.Capture, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, store *config.Store, nmeaOut nmea.Writer, heartbeat time.Duration, now func() time.Time, micros func() uint64, tick <-chan time.Time, sig <-chan os.Signal) error {
	decoder := logic.NewDecoder()
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			logger.Info("shutting down", "signal", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.Warn("publish shutdown event", "err", err)
			} else {
				logger.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			settings := store.Current().Logic()

			snap := capture.Snapshot()
			out := decoder.Cycle(snap, micros(), settings)

			if settings.DebugEnabled {
				logger.Info("cycle",
					"speed_cmps", out.SpeedCmps,
					"dir_deg", out.DirectionDeg,
					"raw_speed_cmps", out.RawSpeedCmps,
					"raw_dir_deg", out.RawDirectionDeg,
					"rotation_rate", out.RotationRate,
					"stalled", out.Stalled,
					"speed_rejected", out.SpeedRejected,
					"dir_rejected", out.DirRejected,
					"ordering_fault", out.OrderingFault,
					"gain", settings.FilterGain,
					"offset", settings.DirectionOffsetDeg)
			}

			if err := publisher.PublishReading(mqtt.Reading{Timestamp: t, Output: out}); err != nil {
				logger.Warn("publish reading", "err", err)
				// Don't crash on publish failure
			}

			if nmeaOut != nil {
				if err := nmeaOut.WriteReading(out); err != nil {
					logger.Warn("nmea write", "err", err)
				}
			}

			speedEdges, dirEdges := capture.EdgeCounts()
			if tracker != nil {
				tracker.Update(out, decoder.CountersSnapshot(), speedEdges, dirEdges, settings)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					logger.Warn("publish heartbeat", "err", err)
				} else {
					logger.Debug("published heartbeat",
						"cycles", decoder.CountersSnapshot().Cycles,
						"speed_edges", speedEdges,
						"dir_edges", dirEdges)
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
