// Command wheel-render writes a still frame and the spin soundtrack of a configured wheel.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/render"
	"github.com/MJE43/wheel-of-fortune-go/internal/sound"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
)

func main() {
	var (
		configPath = flag.String("config", "wheels.yaml", "wheel catalog")
		wheelID    = flag.String("wheel", "", "wheel id (default: first wheel in the catalog)")
		winner     = flag.Int("winner", -1, "draw the wheel settled on this segment")
		angle      = flag.Float64("angle", 0, "wheel rotation in degrees, ignored when -winner is set")
		pngOut     = flag.String("png", "", "write a PNG frame to this path")
		svgOut     = flag.String("svg", "", "write an SVG frame to this path")
		wavOut     = flag.String("wav", "", "write the spin soundtrack for -winner to this path")
		volume     = flag.Float64("volume", 0, "soundtrack linear gain, 0 means unity")
	)
	flag.Parse()

	if *pngOut == "" && *svgOut == "" && *wavOut == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass at least one of -png, -svg, -wav")
		flag.Usage()
		os.Exit(2)
	}

	cat, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	wh, err := pickWheel(cat, *wheelID)
	if err != nil {
		log.Fatal(err)
	}
	segs, err := wh.Segments()
	if err != nil {
		log.Fatalf("build wheel %s: %v", wh.ID, err)
	}

	settleOn := *winner
	if settleOn < 0 && wh.Winner != nil {
		settleOn = *wh.Winner
	}
	if *winner >= len(segs) {
		log.Fatalf("winner %d out of range for %d segments", *winner, len(segs))
	}
	plan := spin.NewPlan(max(settleOn, 0), len(segs), wh.Duration, wh.Direction, wh.Easing)

	frame := *angle
	if *winner >= 0 {
		frame = plan.Target
	}

	if *pngOut != "" {
		writeFile(*pngOut, func(w io.Writer) error { return render.PNG(w, segs, wh.Style, frame) })
	}
	if *svgOut != "" {
		writeFile(*svgOut, func(w io.Writer) error { return render.SVG(w, segs, wh.Style, frame) })
	}
	if *wavOut != "" {
		f, err := os.Create(*wavOut)
		if err != nil {
			log.Fatal(err)
		}
		if err := sound.WriteWAV(f, plan, sound.Options{Volume: *volume}); err != nil {
			f.Close()
			log.Fatalf("write %s: %v", *wavOut, err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s winner=%d clicks=%d", *wavOut, plan.Winner, len(sound.Clicks(plan)))
	}
}

func pickWheel(cat *config.Catalog, id string) (config.Wheel, error) {
	if id == "" {
		if len(cat.Wheels) == 0 {
			return config.Wheel{}, fmt.Errorf("catalog has no wheels")
		}
		return cat.Wheels[0], nil
	}
	wh, ok := cat.Get(id)
	if !ok {
		return config.Wheel{}, fmt.Errorf("unknown wheel %q (have %v)", id, cat.IDs())
	}
	return wh, nil
}

func writeFile(path string, draw func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := draw(f); err != nil {
		f.Close()
		log.Fatalf("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", path)
}
