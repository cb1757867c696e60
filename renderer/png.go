package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Encode frame as a PNG image and write it to file.
func SaveFrame(frame image.Image, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("renderer: could not create %s: %w", file, err)
	}

	err = png.Encode(f, frame)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("renderer: could not write %s: %w", file, err)
	}
	return nil
}
