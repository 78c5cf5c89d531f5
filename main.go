package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/backdrop/internal/audiodrive"
	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/game"
	"github.com/iburimskiy/backdrop/internal/inspector"
	"github.com/iburimskiy/backdrop/internal/mount"
	"github.com/iburimskiy/backdrop/internal/panel"
	"github.com/iburimskiy/backdrop/internal/profiler"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/sandbox"
)

func main() {
	settings, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	policy, err := mount.ParseUnmountPolicy(settings.Unmount)
	if err != nil {
		log.Fatal(err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	stack, err := sandbox.Load(settings.LayersPath, rng)
	if err != nil {
		log.Printf("[main] %v, starting from the default layers", err)
		stack = sandbox.DefaultStack(rng)
	}

	reg := registry.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if settings.InspectAddr != "" {
		srv := inspector.New(reg, inspector.Config{})
		go func() {
			if err := srv.ListenAndServe(ctx, settings.InspectAddr); err != nil {
				log.Printf("[inspector] %v", err)
			}
		}()
	}

	var prof *profiler.Profiler
	if settings.Profile {
		prof = profiler.New(config.ProfileInterval, reg.Len, nil)
	}

	g := game.New(game.Options{
		Registry:   reg,
		Stack:      stack,
		LayersPath: settings.LayersPath,
		Policy:     policy,
		Site:       settings.Site,
		Dialogs:    panel.Native{},
		Audio:      audiodrive.New(),
		Profiler:   prof,
		Rand:       rng,
	})

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Backdrop - Tab: settings, S: site/sandbox, M: viewport, O: audio, Esc/Q: quit")
	ebiten.SetTPS(config.FrameRate)

	err = ebiten.RunGame(g)
	g.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
