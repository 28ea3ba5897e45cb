package covers

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// Render draws img as ANSI art width cells wide. Each cell shows two vertically stacked
// pixels: the upper one as foreground of "▀", the lower one as background.
func Render(img image.Image, width int) string {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	height := b.Dy() * width / b.Dx()
	if height < 2 {
		height = 2
	}
	rows := (height + 1) / 2

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < width; c++ {
			top := sample(img, c, 2*r, width, height)
			bottom := sample(img, c, 2*r+1, width, height)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top))).
				Background(lipgloss.Color(hex(bottom))).
				Render(halfBlock))
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// sample picks the nearest source pixel for cell (x, y) of a w×h grid.
func sample(img image.Image, x, y, w, h int) color.Color {
	b := img.Bounds()
	if y >= h {
		y = h - 1
	}
	sx := b.Min.X + x*b.Dx()/w
	sy := b.Min.Y + y*b.Dy()/h
	return img.At(sx, sy)
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// Cover fetches the image at url and renders it width cells wide.
func (f *Fetcher) Cover(ctx context.Context, url string, width int) (string, error) {
	img, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return Render(img, width), nil
}
