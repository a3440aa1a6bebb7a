package scene

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	stdmath "math"
	"os"
	"strings"

	"pathtracer/core"
	"pathtracer/math"
)

// SkyDefaultColor is returned for rays that leave a scene without an
// environment map.
var SkyDefaultColor = core.NewColor(0.2, 0.2, 0.2)

// SkyDome is an equirectangular floating-point environment map.
type SkyDome struct {
	Width  uint32
	Height uint32
	Pixels []core.Color
}

// LoadSkyDome reads an environment map. A ".bin" cache next to the
// ".hdr" source is preferred; when it is missing the Radiance file is
// decoded once and the cache written beside it.
func LoadSkyDome(path string) (*SkyDome, error) {
	if strings.HasSuffix(path, ".bin") {
		return readSkyCache(path)
	}
	if !strings.HasSuffix(path, ".hdr") {
		return nil, fmt.Errorf("skydome %q: expected a .hdr or .bin file", path)
	}

	binPath := strings.TrimSuffix(path, ".hdr") + ".bin"
	if sky, err := readSkyCache(binPath); err == nil {
		return sky, nil
	}

	sky, err := decodeRadianceHDR(path)
	if err != nil {
		return nil, err
	}
	// Cache write failures are not fatal; the next run just decodes again.
	_ = sky.WriteCache(binPath)
	return sky, nil
}

// FindColor samples the map in the given direction. The horizontal
// angle spans the full width.
func (s *SkyDome) FindColor(dir math.Vec3) core.Color {
	u := 0.5 + float32(stdmath.Atan2(float64(dir.X), float64(-dir.Z)))/(2*math.Pi)
	v := float32(stdmath.Acos(float64(math.Clamp(dir.Y, -1, 1)))) / math.Pi

	x := uint32(u * float32(s.Width))
	y := uint32(v * float32(s.Height))
	if x >= s.Width {
		x = s.Width - 1
	}
	if y >= s.Height {
		y = s.Height - 1
	}

	idx := y*s.Width + x
	if idx >= uint32(len(s.Pixels)) {
		return SkyDefaultColor
	}
	return s.Pixels[idx]
}

// WriteCache stores the map in the binary layout: u32 width, u32
// height (little-endian), then width*height float32 RGB triples,
// scanline-major, top row first.
func (s *SkyDome) WriteCache(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sky cache %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, s.Width); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, s.Height); err != nil {
		return err
	}
	buf := make([]byte, 12)
	for _, c := range s.Pixels {
		binary.LittleEndian.PutUint32(buf[0:], stdmath.Float32bits(c.R))
		binary.LittleEndian.PutUint32(buf[4:], stdmath.Float32bits(c.G))
		binary.LittleEndian.PutUint32(buf[8:], stdmath.Float32bits(c.B))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readSkyCache(path string) (*SkyDome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sky cache %q: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var width, height uint32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("sky cache %q: %w", path, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("sky cache %q: %w", path, err)
	}
	if width == 0 || height == 0 || width > 1<<15 || height > 1<<15 {
		return nil, fmt.Errorf("sky cache %q: implausible size %dx%d", path, width, height)
	}

	pixels := make([]core.Color, width*height)
	buf := make([]byte, 12)
	for i := range pixels {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("sky cache %q: truncated: %w", path, err)
		}
		pixels[i] = core.Color{
			R: stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[0:])),
			G: stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[4:])),
			B: stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[8:])),
		}
	}

	return &SkyDome{Width: width, Height: height, Pixels: pixels}, nil
}

// decodeRadianceHDR parses a Radiance RGBE panorama (the "32-bit_rle_rgbe"
// format, both RLE and flat scanlines).
func decodeRadianceHDR(path string) (*SkyDome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hdr %q: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	// Header: magic, attribute lines, blank line, then the resolution.
	magic, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("hdr %q: %w", path, err)
	}
	if !strings.HasPrefix(magic, "#?RADIANCE") && !strings.HasPrefix(magic, "#?RGBE") {
		return nil, fmt.Errorf("hdr %q: not a radiance file", path)
	}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("hdr %q: header: %w", path, err)
		}
		if strings.TrimSpace(line) == "" {
			break
		}
	}
	resLine, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("hdr %q: resolution: %w", path, err)
	}
	var height, width int
	if _, err := fmt.Sscanf(strings.TrimSpace(resLine), "-Y %d +X %d", &height, &width); err != nil {
		return nil, fmt.Errorf("hdr %q: unsupported orientation %q", path, strings.TrimSpace(resLine))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("hdr %q: bad size %dx%d", path, width, height)
	}

	pixels := make([]core.Color, width*height)
	scan := make([][4]byte, width)
	for y := 0; y < height; y++ {
		if err := readRGBEScanline(r, scan); err != nil {
			return nil, fmt.Errorf("hdr %q: scanline %d: %w", path, y, err)
		}
		for x := 0; x < width; x++ {
			pixels[y*width+x] = rgbeToColor(scan[x])
		}
	}

	return &SkyDome{Width: uint32(width), Height: uint32(height), Pixels: pixels}, nil
}

func readRGBEScanline(r *bufio.Reader, scan [][4]byte) error {
	width := len(scan)

	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return err
	}

	// New-style RLE scanlines start with 0x02 0x02 and the width.
	if head[0] == 2 && head[1] == 2 && int(head[2])<<8|int(head[3]) == width {
		for ch := 0; ch < 4; ch++ {
			x := 0
			for x < width {
				n, err := r.ReadByte()
				if err != nil {
					return err
				}
				if n > 128 { // run of a repeated byte
					v, err := r.ReadByte()
					if err != nil {
						return err
					}
					count := int(n) - 128
					if x+count > width {
						return fmt.Errorf("rle run overflow")
					}
					for i := 0; i < count; i++ {
						scan[x][ch] = v
						x++
					}
				} else { // literal bytes
					count := int(n)
					if x+count > width {
						return fmt.Errorf("rle literal overflow")
					}
					for i := 0; i < count; i++ {
						v, err := r.ReadByte()
						if err != nil {
							return err
						}
						scan[x][ch] = v
						x++
					}
				}
			}
		}
		return nil
	}

	// Flat scanline: head already holds the first pixel.
	scan[0] = head
	for x := 1; x < width; x++ {
		if _, err := io.ReadFull(r, scan[x][:]); err != nil {
			return err
		}
	}
	return nil
}

func rgbeToColor(p [4]byte) core.Color {
	if p[3] == 0 {
		return core.ColorBlack
	}
	scale := float32(stdmath.Ldexp(1, int(p[3])-136)) // 2^(e-128) / 256
	return core.Color{
		R: float32(p[0]) * scale,
		G: float32(p[1]) * scale,
		B: float32(p[2]) * scale,
	}
}
