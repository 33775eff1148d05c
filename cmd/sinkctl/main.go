package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-lightsink/internal/config"
	"github.com/coreman2200/funtimes-lightsink/internal/loop"
	"github.com/coreman2200/funtimes-lightsink/internal/port"
	"github.com/coreman2200/funtimes-lightsink/internal/preview"
	"github.com/coreman2200/funtimes-lightsink/internal/sequence"
	"github.com/coreman2200/funtimes-lightsink/internal/sink"
)

func main() {
	// ---- Flags (config.yaml overrides where set) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "", "register driver: sim | mmap")
		safe       = flag.Bool("safe", false, "use the delay-paced shift path")
		by32       = flag.Bool("by32", false, "by-32 chain wiring")
		pingPong   = flag.Bool("ping-pong", false, "bounce the built-in animation")
		brightness = flag.Int("brightness", -1, "brightness 0..255")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *safe {
		cfg.Fast = false
	}
	if *by32 {
		cfg.By32 = true
	}
	if *pingPong {
		cfg.Animation.PingPong = true
	}
	if *brightness >= 0 && *brightness <= 255 {
		cfg.Brightness = uint8(*brightness)
	}

	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; hardware PWM unavailable")
	}

	pins := cfg.SinkPins()
	opts := []sink.Option{
		sink.WithLogger(log.With().Str("component", "sink").Logger()),
		sink.WithPulseWidth(cfg.PulseWidth()),
		sink.WithPWMFrequency(cfg.PWMFrequency()),
	}
	if cfg.PWMPin != "" {
		if p := gpioreg.ByName(cfg.PWMPin); p != nil {
			opts = append(opts, sink.WithDimmer(p))
		} else {
			log.Warn().Str("pwm_pin", cfg.PWMPin).Msg("no such pin; brightness falls back to on/off")
		}
	}

	// ---- Register bank: mmap falls back to sim ----
	var (
		bank port.Bank
		prev *preview.Preview
	)
	switch cfg.Driver {
	case "mmap":
		mb, err := port.MapBank(cfg.MMap.Device, cfg.MMap.Offset, cfg.PortOffsets())
		if err != nil {
			log.Warn().Err(err).
				Str("device", cfg.MMap.Device).
				Int64("offset", cfg.MMap.Offset).
				Msg("mmap failed; falling back to SIM")
			break
		}
		defer mb.Close()
		bank = mb
	case "sim", "":
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
	}

	var ctl *sink.Controller
	if bank == nil {
		mem := port.NewMemBank()
		clk, a, b, err := pins.Lines()
		if err != nil {
			log.Fatal().Err(err).Msg("pins")
		}
		tr := port.NewTrace(mem, clk, a, b)
		prev = preview.New(tr, func() bool { return ctl.By32() })
		defer prev.Halt()
		bank = mem
	}

	ctl, err = sink.New(bank, pins, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("sink controller")
	}
	ctl.SetFast(cfg.Fast)
	ctl.SetBy32(cfg.By32)
	ctl.SetDeferFinish(cfg.DeferFinish)
	if err := ctl.SetBrightness(cfg.Brightness); err != nil {
		log.Warn().Err(err).Msg("brightness")
	}

	tab, err := cfg.Table()
	if err != nil {
		log.Fatal().Err(err).Msg("animation")
	}

	popts := []sequence.Option{
		sequence.WithLogger(log.With().Str("component", "player").Logger()),
	}
	if prev != nil {
		popts = append(popts, sequence.WithShown(func(int) {
			if cfg.DeferFinish {
				ctl.Finish()
			}
			if err := prev.Show(); err != nil {
				log.Warn().Err(err).Msg("preview")
			}
		}))
	}
	player, err := sequence.NewPlayer(ctl, tab, popts...)
	if err != nil {
		log.Fatal().Err(err).Msg("player")
	}

	log.Info().
		Str("driver", cfg.Driver).
		Bool("fast", cfg.Fast).
		Bool("by32", cfg.By32).
		Int("frames", tab.Len()).
		Bool("ping_pong", tab.PingPong()).
		Msg("playing")

	if err := loop.New(player).Start(context.Background()); err != nil {
		log.Error().Err(err).Msg("playback stopped")
	}
	if cfg.DeferFinish {
		ctl.Finish()
	}
}
