package synthetic

import "github.com/gogpu/overlaycam/camera"

// Base tint per facing, in RGB.
var tints = map[camera.Facing][3]uint8{
	camera.FacingBack:  {32, 64, 160},
	camera.FacingFront: {32, 144, 64},
}

// pattern draws a vertical gradient in the facing's tint with a white bar
// that moves one step per sequence number. Torch brightens the frame.
func pattern(w, h int, facing camera.Facing, seq uint64, torch, bgra bool) []byte {
	pix := make([]byte, 4*w*h)
	tint := tints[facing]
	bar := 0
	if w > 0 {
		bar = int(seq*8) % w
	}
	for y := 0; y < h; y++ {
		shade := 96 + 159*y/max(h-1, 1)
		if torch {
			shade = min(shade+64, 255)
		}
		row := pix[4*w*y : 4*w*(y+1)]
		for x := 0; x < w; x++ {
			px := row[4*x : 4*x+4]
			if x >= bar && x < bar+8 {
				px[0], px[1], px[2], px[3] = 255, 255, 255, 255
				continue
			}
			r := uint8(int(tint[0]) * shade / 255)
			g := uint8(int(tint[1]) * shade / 255)
			b := uint8(int(tint[2]) * shade / 255)
			if bgra {
				r, b = b, r
			}
			px[0], px[1], px[2], px[3] = r, g, b, 255
		}
	}
	return pix
}
