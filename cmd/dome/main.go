package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phanxgames/dome"
)

var (
	configPath    string
	imagesDir     string
	width, height int
	scriptPath    string
	screenshotDir string
	verbose       bool
	showFPS       bool
	watch         bool

	rootCmd = &cobra.Command{
		Use:   "dome [IMAGE...]",
		Short: "Browse images laid out on a rotating sphere.",
		Long: `dome lays out images on a sphere that drifts, follows drags and flings,
and opens a tile into an enlarged view when tapped. Images come from the
arguments, from --images, or from the config file's images list.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&imagesDir, "images", "i", "", "directory of images to show, searched recursively")
	f.IntVar(&width, "width", 1280, "window width")
	f.IntVar(&height, "height", 800, "window height")
	f.StringVar(&scriptPath, "script", "", "JSON test script to run; the window closes when it finishes")
	f.StringVar(&screenshotDir, "screenshots", "screenshots", "directory screenshots are written to")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&showFPS, "fps", false, "show frame rate")
	f.BoolVarP(&watch, "watch", "w", false, "reload the config file when it changes")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stderr sync errors are not actionable
	zap.ReplaceGlobals(log)

	cfg := dome.DefaultConfig()
	baseDir := ""
	if configPath != "" {
		if cfg, err = dome.LoadConfig(configPath); err != nil {
			return err
		}
		baseDir = filepath.Dir(configPath)
	}

	// An explicit pool stays put across config reloads; a pool taken from
	// the config follows it.
	var pool []dome.Image
	switch {
	case len(args) > 0:
		pool, baseDir = dome.ParsePool(args), ""
	case imagesDir != "":
		if pool, err = scanImages(imagesDir); err != nil {
			return err
		}
		if pool == nil {
			pool = []dome.Image{} // an empty directory still overrides the config
		}
		baseDir = ""
	}

	d, err := dome.New(cfg, pool)
	if err != nil {
		return err
	}
	d.SetLogger(log)
	if pool == nil {
		d.LoadImagesFrom(baseDir)
	}
	if len(d.Pool()) == 0 {
		log.Warn("no images given; tiles will be blank")
	}

	imgs, err := dome.LoadPool(cmd.Context(), log, baseDir, d.Pool())
	if err != nil {
		if cmd.Context().Err() != nil {
			return err
		}
		log.Warn("some images failed to load", zap.Error(err))
	}

	scene := dome.NewScene()
	scene.SetLogger(log)
	scene.SetDebugMode(verbose)
	scene.ClearColor = dome.Color{R: 0.02, G: 0.0, B: 0.06, A: 1}
	scene.ScreenshotDir = screenshotDir

	d.SetTextures(dome.Textures(imgs))
	d.Mount(scene)

	if watch && configPath != "" {
		w, err := dome.WatchConfig(configPath, log)
		if err != nil {
			return err
		}
		defer w.Close()
		d.Follow(w.Updates())
	}

	rc := dome.RunConfig{Title: "Dome", Width: width, Height: height, ShowFPS: showFPS}
	if scriptPath != "" {
		runner, err := dome.LoadTestScriptFile(scriptPath)
		if err != nil {
			return err
		}
		scene.SetTestRunner(runner)
		rc.ExitWhenDone = true
	}
	return dome.Run(scene, rc)
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".webp", ".tga"}

// scanImages lists the images under dir, recursively, in path order.
func scanImages(dir string) ([]dome.Image, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("read images %s: %w", dir, err)
	}
	var (
		mu   sync.Mutex
		pool []dome.Image
	)
	conf := fastwalk.DefaultConfig
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !slices.Contains(imageExts, strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}
		alt, _ := filepath.Rel(dir, path)
		mu.Lock()
		pool = append(pool, dome.Image{Src: path, Alt: alt})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read images %s: %w", dir, err)
	}
	slices.SortFunc(pool, func(a, b dome.Image) int { return strings.Compare(a.Src, b.Src) })
	return pool, nil
}
