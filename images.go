package dome

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentDecodes bounds the number of images decoded at once.
const maxConcurrentDecodes = 8

// LoadImages decodes every distinct source in srcs, resolved against dir
// when relative. PNG, JPEG, WebP and TGA are supported. A source that fails
// to load is logged and left out of the result, and its error is combined
// into the returned error; the other sources still load. Only cancellation
// of ctx stops the load early.
func LoadImages(ctx context.Context, log *zap.Logger, dir string, srcs []string) (map[string]image.Image, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		mu     sync.Mutex
		out    = make(map[string]image.Image, len(srcs))
		errs   error
		queued = make(map[string]bool, len(srcs))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDecodes)
	for _, src := range srcs {
		if src == "" || queued[src] {
			continue
		}
		queued[src] = true
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeFile(resolve(dir, src))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("image load failed", zap.String("src", src), zap.Error(err))
				errs = multierr.Append(errs, err)
				return nil
			}
			out[src] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	log.Debug("images loaded", zap.Int("ok", len(out)), zap.Int("failed", len(multierr.Errors(errs))))
	return out, errs
}

// LoadPool decodes the images of a pool. See LoadImages.
func LoadPool(ctx context.Context, log *zap.Logger, dir string, pool []Image) (map[string]image.Image, error) {
	srcs := make([]string, len(pool))
	for i, im := range pool {
		srcs[i] = im.Src
	}
	return LoadImages(ctx, log, dir, srcs)
}

// Textures uploads decoded images to the GPU. Call it from the game thread.
func Textures(imgs map[string]image.Image) map[string]*ebiten.Image {
	out := make(map[string]*ebiten.Image, len(imgs))
	for src, img := range imgs {
		out[src] = ebiten.NewImageFromImage(img)
	}
	return out
}

func resolve(dir, src string) string {
	if dir == "" || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(dir, src)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}
