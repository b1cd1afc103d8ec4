// Command overlaycam-render composites a layer file onto an image and
// writes the result as a JPEG.
//
// The layer file is YAML or JSON, either a list of layer definitions or a
// document with a layers key:
//
//	layers:
//	  - type: text
//	    text: Site 7
//	    x: 0.05
//	    y: 0.9
//	    fontColor: "#FFFFFF"
//	  - type: image
//	    imagePath: ~/logo.png
//	    x: 0.8
//	    y: 0.05
//	    width: 0.15
//	    height: 0.08
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/overlaycam"
	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/fonts"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/render"
	"github.com/gogpu/overlaycam/resource"
	"github.com/gogpu/overlaycam/surface"
)

type job struct {
	input   string
	layers  string
	output  string
	width   int
	height  int
	quality int
	timeout time.Duration
	fonts   []string
}

type fontList []string

func (f *fontList) String() string     { return strings.Join(*f, ",") }
func (f *fontList) Set(v string) error { *f = append(*f, v); return nil }

func main() {
	var (
		j         job
		fontFiles fontList
		verbose   bool
	)
	flag.StringVar(&j.input, "in", "", "base image path or URL (required)")
	flag.StringVar(&j.layers, "layers", "", "layer file, YAML or JSON")
	flag.StringVar(&j.output, "out", "out.jpg", "output JPEG file")
	flag.IntVar(&j.width, "width", 0, "output width (default: input width)")
	flag.IntVar(&j.height, "height", 0, "output height (default: input height)")
	flag.IntVar(&j.quality, "quality", capture.DefaultQuality, "JPEG quality, 0 to 100")
	flag.DurationVar(&j.timeout, "timeout", 10*time.Second, "image load timeout")
	flag.Var(&fontFiles, "font", "font file to register (repeatable)")
	flag.BoolVar(&verbose, "v", false, "log skipped layers")
	flag.Parse()
	j.fonts = fontFiles

	if j.input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if verbose {
		overlaycam.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx := context.Background()
	size, err := j.run(ctx)
	if err != nil {
		log.Fatalf("overlaycam-render: %v", err)
	}
	log.Printf("wrote %s (%dx%d)", j.output, size.X, size.Y)
}

func (j job) run(ctx context.Context) (image.Point, error) {
	defs, err := readLayers(j.layers)
	if err != nil {
		return image.Point{}, err
	}

	store := layer.NewStore()
	for i, d := range defs {
		l, err := d.Layer()
		if err == nil {
			_, err = store.Add(l)
		}
		if err != nil {
			return image.Point{}, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	snapshot := store.Snapshot()

	loader := resource.NewLoader(resource.WithTimeout(j.timeout))
	defer loader.Close()

	base, err := loader.Load(sourceFor(j.input)).Wait(ctx)
	if err != nil {
		return image.Point{}, err
	}
	images := j.await(ctx, loader, snapshot)

	w, h := j.width, j.height
	if w <= 0 || h <= 0 {
		b := base.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	target, err := surface.NewSurface(w, h)
	if err != nil {
		return image.Point{}, err
	}
	defer target.Close()

	book := fonts.New()
	for _, f := range j.fonts {
		if _, err := book.RegisterFile(f); err != nil {
			return image.Point{}, err
		}
	}
	comp := render.NewCompositor(render.NewRenderer(book))
	report := comp.Composite(target, base, snapshot, images)
	for _, s := range report.Skipped {
		overlaycam.Logger().Warn("overlaycam-render: layer skipped", "id", s.ID, "err", s.Err)
	}
	if err := target.Flush(); err != nil {
		return image.Point{}, err
	}

	var buf bytes.Buffer
	if err := capture.EncodeJPEG(&buf, target.Snapshot(), float64(min(max(j.quality, 0), 100))/100); err != nil {
		return image.Point{}, err
	}
	out, err := filepath.Abs(j.output)
	if err != nil {
		return image.Point{}, err
	}
	saver, err := capture.NewDirSaver(filepath.Dir(out))
	if err != nil {
		return image.Point{}, err
	}
	if _, err := saver.Save(ctx, filepath.Base(out), buf.Bytes()); err != nil {
		return image.Point{}, err
	}
	return image.Pt(w, h), nil
}

// await loads every overlay image. Images that fail are left out of the
// map and their layers are skipped by the compositor.
func (j job) await(ctx context.Context, loader *resource.Loader, snapshot []layer.Layer) render.ImageMap {
	images := make(render.ImageMap)
	results := make([]image.Image, len(snapshot))
	g, ctx := errgroup.WithContext(ctx)
	for i, l := range snapshot {
		img, ok := l.Content.(*layer.Image)
		if !ok {
			continue
		}
		src := resource.SourceOf(img)
		g.Go(func() error {
			got, err := loader.Load(src).Wait(ctx)
			if err != nil {
				overlaycam.Logger().Warn("overlaycam-render: image not loaded", "source", src.String(), "err", err)
				return nil
			}
			results[i] = got
			return nil
		})
	}
	_ = g.Wait()
	for i, l := range snapshot {
		if results[i] != nil {
			images[l.Content.(*layer.Image).Source()] = results[i]
		}
	}
	return images
}

type layerFile struct {
	Layers []layer.Definition `yaml:"layers"`
}

// readLayers parses path. An empty path means no layers.
func readLayers(path string) ([]layer.Definition, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var defs []layer.Definition
		if err := root.Decode(&defs); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return defs, nil
	}
	var f layerFile
	if err := root.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f.Layers, nil
}

func sourceFor(ref string) resource.Source {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") {
		return resource.SourceOf(&layer.Image{URL: ref})
	}
	return resource.SourceOf(&layer.Image{Path: ref})
}
