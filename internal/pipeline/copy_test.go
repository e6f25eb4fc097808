package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyChanged(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createTestFile(t, "_fonts/sub/icons.woff", "icons")
	env.createTestFile(t, "_fonts/LICENSE", "no extension, not copied")

	n, err := env.config.copyChanged(ctx, "fonts")
	if err != nil {
		t.Fatalf("copyChanged() error = %v", err)
	}
	if n != 2 {
		t.Errorf("copied %d file(s), want 2", n)
	}
	if got := env.readFile(t, "assets/fonts/sub/icons.woff"); got != "icons" {
		t.Errorf("nested copy = %q", got)
	}
	if _, err := os.Stat(filepath.Join(env.root, "assets", "fonts", "LICENSE")); !os.IsNotExist(err) {
		t.Error("files without an extension should not be copied")
	}

	// Nothing changed: nothing is copied.
	if n, err := env.config.copyChanged(ctx, "fonts"); err != nil || n != 0 {
		t.Errorf("second copyChanged() = %d, %v; want 0, nil", n, err)
	}

	// A newer source is copied again.
	src := env.createTestFile(t, "_fonts/open-sans.woff2", "font v2")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatal(err)
	}
	if n, err := env.config.copyChanged(ctx, "fonts"); err != nil || n != 1 {
		t.Errorf("copyChanged() after change = %d, %v; want 1, nil", n, err)
	}
	if got := env.readFile(t, "assets/fonts/open-sans.woff2"); got != "font v2" {
		t.Errorf("updated copy = %q", got)
	}
}

func TestCopyChanged_MissingSource(t *testing.T) {
	env := setupTestEnv(t)
	if n, err := env.config.copyChanged(context.Background(), "models"); err != nil || n != 0 {
		t.Errorf("copyChanged() = %d, %v; want 0, nil", n, err)
	}
}

func TestCopyChanged_ImagesOptimizedInProduction(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y * 2), 90, 255})
		}
	}
	var src bytes.Buffer
	if err := jpeg.Encode(&src, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		production bool
		wantSame   bool
	}{
		{"development copies as is", false, true},
		{"production re-encodes", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			env.config.Production = tt.production
			env.config.Images.JPEGQuality = 50
			env.createTestFile(t, "_images/header.jpg", src.String())
			env.createTestFile(t, "_images/logo.svg", "<svg/>")

			if _, err := env.config.copyChanged(context.Background(), "images"); err != nil {
				t.Fatalf("copyChanged() error = %v", err)
			}
			got := env.readFile(t, "assets/images/header.jpg")
			if (got == src.String()) != tt.wantSame {
				t.Errorf("image unchanged = %v, want %v", got == src.String(), tt.wantSame)
			}
			if env.readFile(t, "assets/images/logo.svg") != "<svg/>" {
				t.Error("svg should be copied verbatim")
			}
		})
	}
}
