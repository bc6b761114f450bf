// Command gbcore runs a cartridge in a host window with audio.
//
//	gbcore game.gb --scale 4 --model auto
//
// With no cartridge argument a native file picker is shown. Exit code
// is nonzero when the cartridge header is invalid or the mapper is
// unsupported.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/sqweek/dialog"
	"gopkg.in/yaml.v3"

	"gbcore/internal/apu"
	"gbcore/internal/debugserver"
	"gbcore/internal/gameboy"
	"gbcore/internal/ppu"
	"gbcore/internal/romfile"
	"gbcore/internal/types"
	"gbcore/pkg/audio"
	"gbcore/pkg/debugplot"
	"gbcore/pkg/display"
	"gbcore/pkg/log"
)

// config is the optional YAML config file; flags override its values.
type config struct {
	Model    string `yaml:"model"`
	Scale    int    `yaml:"scale"`
	SavesDir string `yaml:"saves_dir"`
	Display  string `yaml:"display"`
}

func loadConfig() config {
	cfg := config{Model: "auto", Scale: 3, SavesDir: "saves", Display: "fyne"}
	home, err := os.UserConfigDir()
	if err != nil {
		return cfg
	}
	raw, err := os.ReadFile(filepath.Join(home, "gbcore", "config.yaml"))
	if err != nil {
		return cfg
	}
	_ = yaml.Unmarshal(raw, &cfg)
	return cfg
}

func main() {
	cfg := loadConfig()

	var f cliFlags

	root := &cobra.Command{
		Use:          "gbcore [cartridge]",
		Short:        "A cycle-accurate DMG/CGB emulator",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			romPath := ""
			if len(args) == 1 {
				romPath = args[0]
			} else {
				picked, err := dialog.File().
					Filter("Game Boy cartridges", "gb", "gbc", "7z").
					Title("Open cartridge").Load()
				if err != nil {
					return fmt.Errorf("no cartridge selected: %w", err)
				}
				romPath = picked
			}
			return run(cfg, romPath, f)
		},
	}

	root.Flags().StringVar(&f.bootrom, "bootrom", "", "boot ROM image to execute before the cartridge")
	root.Flags().IntVar(&f.scale, "scale", cfg.Scale, "integer window scale")
	root.Flags().StringVar(&f.model, "model", cfg.Model, "hardware model: dmg, cgb or auto")
	root.Flags().BoolVar(&f.mute, "mute", false, "disable audio output")
	root.Flags().StringVar(&f.display, "display", cfg.Display, "display driver: fyne or sdl")
	root.Flags().StringVar(&f.plotAudio, "plot-audio", "", "write a waveform chart of the session's audio to this PNG on exit")
	root.Flags().StringVar(&f.debugAddr, "debug-server", "", "serve the websocket inspector on this address (e.g. localhost:9222)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// cliFlags collects the command-line values run needs.
type cliFlags struct {
	bootrom   string
	model     string
	display   string
	plotAudio string
	debugAddr string
	scale     int
	mute      bool
}

func run(cfg config, romPath string, f cliFlags) error {
	logger := log.New()

	rom, err := romfile.Load(romPath)
	if err != nil {
		return err
	}

	opts := []gameboy.Option{gameboy.WithLogger(logger)}
	switch f.model {
	case "dmg":
		opts = append(opts, gameboy.AsModel(types.DMG))
	case "cgb":
		opts = append(opts, gameboy.AsModel(types.CGB))
	case "auto":
	default:
		return fmt.Errorf("unknown model %q (want dmg, cgb or auto)", f.model)
	}
	if f.bootrom != "" {
		img, err := os.ReadFile(f.bootrom)
		if err != nil {
			return fmt.Errorf("reading boot ROM: %w", err)
		}
		opts = append(opts, gameboy.WithBootROM(img))
	}

	g, err := gameboy.New(rom, opts...)
	if err != nil {
		return err
	}
	logger.Infof("loaded %s", g)

	savePath := filepath.Join(cfg.SavesDir, g.Title()+".sav")
	rtcPath := filepath.Join(cfg.SavesDir, g.Title()+".rtc")
	loadSaves(g, savePath, rtcPath, logger)

	sink, err := audio.OpenSDL(apu.DefaultSampleRate, f.mute)
	if err != nil {
		logger.Warnf("audio device unavailable, muting: %v", err)
		sink = nil
	} else {
		defer sink.Close()
	}

	var inspector *debugserver.Server
	if f.debugAddr != "" {
		inspector = debugserver.New(logger)
		go func() {
			if err := inspector.ListenAndServe(f.debugAddr); err != nil {
				logger.Warnf("debug server: %v", err)
			}
		}()
	}

	var captured []apu.Sample

	frames := make(chan *ppu.Frame, 2)
	input := make(chan uint8, 16)
	stop := make(chan struct{})

	go func() {
		defer close(frames)
		ticker := time.NewTicker(time.Second * 70224 / 4194304)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case status := <-input:
				g.UpdateJoypad(status)
			case <-ticker.C:
				frame := g.StepFrame()
				if frame != nil {
					select {
					case frames <- frame:
					default: // display is behind; drop the frame
					}
					if inspector != nil {
						inspector.Publish(g, frameBytes(frame))
					}
				}
				if block, ok := g.TakeAudio(); ok {
					if sink != nil {
						_ = sink.Push(block)
					}
					if f.plotAudio != "" && len(captured) < apu.DefaultSampleRate*30 {
						captured = append(captured, block...)
					}
				}
			}
		}
	}()

	var driver display.Driver
	switch f.display {
	case "sdl":
		driver = display.NewSDL()
	default:
		driver = display.NewFyne()
	}

	runErr := driver.Run(
		display.Config{Title: "gbcore - " + g.Title(), Scale: f.scale},
		frames,
		func(status uint8) { input <- status },
	)
	close(stop)

	writeSaves(g, cfg.SavesDir, savePath, rtcPath, logger)

	if f.plotAudio != "" && len(captured) > 0 {
		chart, err := os.Create(f.plotAudio)
		if err == nil {
			defer chart.Close()
			if err := debugplot.Waveform(chart, captured, apu.DefaultSampleRate); err != nil {
				logger.Warnf("writing audio chart: %v", err)
			}
		}
	}
	return runErr
}

// frameBytes flattens a frame for the inspector's digest.
func frameBytes(frame *ppu.Frame) []byte {
	buf := make([]byte, 0, ppu.ScreenWidth*ppu.ScreenHeight*3)
	for y := range frame {
		for x := range frame[y] {
			buf = append(buf, frame[y][x][:]...)
		}
	}
	return buf
}

func loadSaves(g *gameboy.GameBoy, savePath, rtcPath string, logger log.Logger) {
	if data, err := os.ReadFile(savePath); err == nil {
		g.LoadSave(data)
		logger.Infof("loaded save %s", savePath)
	}
	if data, err := os.ReadFile(rtcPath); err == nil {
		if err := g.LoadRTC(data, time.Now().Unix()); err != nil {
			logger.Warnf("loading RTC: %v", err)
		}
	}
}

func writeSaves(g *gameboy.GameBoy, dir, savePath, rtcPath string, logger log.Logger) {
	if data := g.Save(); data != nil {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			if err := os.WriteFile(savePath, data, 0o644); err != nil {
				logger.Errorf("writing save: %v", err)
			}
		}
	}
	if data, ok := g.SaveRTC(time.Now().Unix()); ok {
		if err := os.WriteFile(rtcPath, data, 0o644); err != nil {
			logger.Errorf("writing RTC save: %v", err)
		}
	}
}
