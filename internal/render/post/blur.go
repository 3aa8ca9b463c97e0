package post

import "image"

// boxBlur runs a separable box filter of radius r over img in place, edges
// clamped.
func boxBlur(img *image.RGBA, r int) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if r <= 0 || w == 0 || h == 0 {
		return
	}
	n := max(w, h)
	line := make([]int, n*4)
	pass := func(count, length int, at func(i, j int) int) {
		for i := 0; i < count; i++ {
			for j := 0; j < length; j++ {
				o := at(i, j)
				copy4(line[j*4:], img.Pix[o:])
			}
			for j := 0; j < length; j++ {
				var s [4]int
				for d := -r; d <= r; d++ {
					k := min(max(j+d, 0), length-1) * 4
					s[0] += line[k]
					s[1] += line[k+1]
					s[2] += line[k+2]
					s[3] += line[k+3]
				}
				o := at(i, j)
				div := 2*r + 1
				for c := 0; c < 4; c++ {
					img.Pix[o+c] = uint8(s[c] / div)
				}
			}
		}
	}
	pass(h, w, func(y, x int) int { return y*img.Stride + x*4 })
	pass(w, h, func(x, y int) int { return y*img.Stride + x*4 })
}

func copy4(dst []int, src []uint8) {
	dst[0], dst[1], dst[2], dst[3] = int(src[0]), int(src[1]), int(src[2]), int(src[3])
}
