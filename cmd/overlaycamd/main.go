// Command overlaycamd serves a camera with overlays over HTTP.
//
// The camera is the synthetic driver; a platform driver plugs in through
// camera.Driver. See internal/api for the routes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/overlaycam"
	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/camera/synthetic"
	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/fonts"
	"github.com/gogpu/overlaycam/internal/api"
	"github.com/gogpu/overlaycam/internal/config"
	"github.com/gogpu/overlaycam/surface"
)

func main() {
	var (
		path = flag.String("config", config.DefaultPath, "configuration file")
		addr = flag.String("addr", "", "listen address (overrides the config)")
	)
	flag.Parse()

	cfg, err := config.New(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "overlaycamd:", err)
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "overlaycamd:", err)
		os.Exit(2)
	}
	overlaycam.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("overlaycamd: exiting", "err", err)
		os.Exit(1)
	}
}

func newLogger(c config.LogConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func newCamera(cfg *config.Config) (*overlaycam.Camera, error) {
	saver, err := capture.NewDirSaver(cfg.Capture.OutputDir)
	if err != nil {
		return nil, err
	}
	opts := []overlaycam.Option{
		overlaycam.WithSaver(saver),
		overlaycam.WithResourceTimeout(cfg.Capture.ResourceTimeout),
		overlaycam.WithFonts(newFonts(cfg.Fonts)),
	}
	if cfg.Capture.GalleryDir != "" {
		gallery, err := capture.NewDirSaver(cfg.Capture.GalleryDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, overlaycam.WithExternalSaver(gallery))
	}

	driver := synthetic.New(
		synthetic.WithPreviewSize(cfg.Camera.Preview.W, cfg.Camera.Preview.H),
		synthetic.WithStillSize(cfg.Camera.Still.W, cfg.Camera.Still.H),
		synthetic.WithFrameRate(cfg.Camera.FrameRate),
		synthetic.WithCapabilities(camera.Capabilities{
			Flash: true, Torch: true, Zoom: true, Focus: true,
			MaxZoom: cfg.Camera.MaxZoom,
		}),
	)
	return overlaycam.New(driver, opts...), nil
}

func newFonts(c config.FontsConfig) *fonts.Book {
	var opts []fonts.Option
	if c.System {
		opts = append(opts, fonts.WithSystemFonts(c.CacheDir))
	}
	book := fonts.New(opts...)
	for _, f := range c.Files {
		name, err := book.RegisterFile(f)
		if err != nil {
			overlaycam.Logger().Warn("overlaycamd: font not loaded", "file", f, "err", err)
			continue
		}
		overlaycam.Logger().Debug("overlaycamd: font loaded", "family", name)
	}
	return book
}

// startOptions is the start request used by autostart. Validate has already
// checked the facing.
func startOptions(cfg *config.Config) overlaycam.StartOptions {
	facing, _ := camera.ParseFacing(cfg.Camera.Facing)
	return overlaycam.StartOptions{Facing: facing, ZoomGesture: true, FocusGesture: true}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	cam, err := newCamera(cfg)
	if err != nil {
		return err
	}
	defer cam.Close()

	if cfg.Camera.Autostart {
		if err := cam.Start(ctx, startOptions(cfg)); err != nil {
			return fmt.Errorf("start camera: %w", err)
		}
	}

	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     api.NewServer(cam, api.WithPreviewQuality(cfg.Server.PreviewQuality)),
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout would cut the preview stream, so only the header
		// read is bounded.
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("overlaycamd: listening", "addr", cfg.Server.Addr, "surfaces", surface.Backends())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("overlaycamd: stopped")
	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: overlaycamd [-config file] [-addr host:port]\n")
		flag.PrintDefaults()
	}
}
