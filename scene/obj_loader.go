package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pathtracer/core"
	remath "pathtracer/math"
	"pathtracer/trace"
)

// LoadOBJ parses a Wavefront .obj file into triangles and materials.
// A companion .mtl file is loaded automatically if referenced via
// "mtllib". Faces that are not exactly three vertices are rejected.
func LoadOBJ(path string, cache *TextureCache) ([]trace.Triangle, []Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)

	// Indexed OBJ data pools
	var positions []remath.Vec3
	var uvs []remath.Vec2

	var materials []Material
	matIndex := map[string]int32{}
	matOffset := map[int32]remath.Vec2{}
	current := int32(-1)

	var triangles []trace.Triangle
	rejected := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			x, _ := strconv.ParseFloat(fields[1], 32)
			y, _ := strconv.ParseFloat(fields[2], 32)
			z, _ := strconv.ParseFloat(fields[3], 32)
			positions = append(positions, remath.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})

		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[1], 32)
			v, _ := strconv.ParseFloat(fields[2], 32)
			uvs = append(uvs, remath.Vec2{X: float32(u), Y: float32(v)})

		case "usemtl":
			if len(fields) > 1 {
				if idx, ok := matIndex[fields[1]]; ok {
					current = idx
				} else {
					current = -1
				}
			}

		case "mtllib":
			if len(fields) > 1 {
				mtlPath := filepath.Join(dir, fields[1])
				loaded, offsets, err := loadMTL(mtlPath, dir, cache)
				if err != nil {
					return nil, nil, err
				}
				for name, mat := range loaded {
					idx := int32(len(materials))
					materials = append(materials, mat)
					matIndex[name] = idx
					if off, ok := offsets[name]; ok {
						matOffset[idx] = off
					}
				}
			}

		case "f":
			// A face must reference exactly three vertices.
			if len(fields) != 4 {
				rejected++
				continue
			}
			var fv [3]objFaceVertex
			for c := 0; c < 3; c++ {
				fv[c] = parseFaceVertex(fields[c+1], len(positions), len(uvs))
			}
			if fv[0].v < 0 || fv[1].v < 0 || fv[2].v < 0 {
				rejected++
				continue
			}

			tri := trace.NewTriangle(positions[fv[0].v], positions[fv[1].v], positions[fv[2].v], current)
			if fv[0].vt >= 0 && fv[1].vt >= 0 && fv[2].vt >= 0 {
				t0, t1, t2 := uvs[fv[0].vt], uvs[fv[1].vt], uvs[fv[2].vt]
				if off, ok := matOffset[current]; ok {
					t0 = t0.Add(off)
					t1 = t1.Add(off)
					t2 = t2.Add(off)
				}
				tri.T0 = t0
				tri.T1 = t1.Sub(t0)
				tri.T2 = t2.Sub(t0)
			}
			triangles = append(triangles, tri)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan obj %q: %w", path, err)
	}
	if len(triangles) == 0 {
		return nil, nil, fmt.Errorf("no triangles found in %q", path)
	}
	if rejected > 0 {
		fmt.Fprintf(os.Stderr, "obj %s: rejected %d non-triangle faces\n", path, rejected)
	}

	return triangles, materials, nil
}

type objFaceVertex struct {
	v, vt int
}

// parseFaceVertex parses one face token: "v", "v/vt", "v//vn" or
// "v/vt/vn". OBJ indices are 1-based; negative indices count from the
// end. Out-of-range references resolve to -1.
func parseFaceVertex(tok string, nPos, nUV int) objFaceVertex {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		idx, err := strconv.Atoi(s)
		if err != nil {
			return -1
		}
		if idx > 0 {
			idx--
		} else {
			idx += n
		}
		if idx < 0 || idx >= n {
			return -1
		}
		return idx
	}

	parts := strings.Split(tok, "/")
	res := objFaceVertex{v: -1, vt: -1}
	if len(parts) > 0 {
		res.v = parseIdx(parts[0], nPos)
	}
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nUV)
	}
	return res
}

// loadMTL reads a material library. The mapping follows the tracer's
// material model: Kd is the albedo, the mirror fraction is 1 - Ns and
// the refraction fraction is 1 - d (both with the value clamped to
// [0,1]), and Ni is the index of refraction.
func loadMTL(path, dir string, cache *TextureCache) (map[string]Material, map[string]remath.Vec2, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open mtl %q: %w", path, err)
	}
	defer f.Close()

	mats := map[string]Material{}
	offsets := map[string]remath.Vec2{}
	var curName string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cur, haveCur := mats[curName]
		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				curName = fields[1]
				m := DefaultMaterial()
				m.Name = curName
				mats[curName] = m
			}
			continue
		case "Kd":
			if haveCur && len(fields) >= 4 {
				r, _ := strconv.ParseFloat(fields[1], 32)
				g, _ := strconv.ParseFloat(fields[2], 32)
				b, _ := strconv.ParseFloat(fields[3], 32)
				cur.Albedo = core.Color{R: float32(r), G: float32(g), B: float32(b)}
			}
		case "Ns":
			if haveCur && len(fields) >= 2 {
				ns, _ := strconv.ParseFloat(fields[1], 32)
				cur.Reflection = 1 - remath.Clamp(float32(ns), 0, 1)
			}
		case "d":
			if haveCur && len(fields) >= 2 {
				dissolve, _ := strconv.ParseFloat(fields[1], 32)
				cur.Refraction = 1 - remath.Clamp(float32(dissolve), 0, 1)
			}
		case "Ni":
			if haveCur && len(fields) >= 2 {
				ni, _ := strconv.ParseFloat(fields[1], 32)
				cur.IoR = float32(ni)
			}
		case "map_Kd":
			if haveCur && len(fields) >= 2 {
				args := fields[1:]
				// Optional "-o u v" texture origin offset.
				if args[0] == "-o" && len(args) >= 4 {
					u, _ := strconv.ParseFloat(args[1], 32)
					v, _ := strconv.ParseFloat(args[2], 32)
					offsets[curName] = remath.Vec2{X: float32(u), Y: float32(v)}
					args = args[3:]
				}
				texPath := filepath.Join(dir, args[len(args)-1])
				tex, err := cache.Load(texPath)
				if err != nil {
					return nil, nil, err
				}
				cur.Texture = tex
			}
		}
		if haveCur {
			// Re-clamp the branch probabilities after every edit.
			if cur.Reflection+cur.Refraction > 1 {
				cur.Reflection = 1 - cur.Refraction
			}
			mats[curName] = cur
		}
	}

	return mats, offsets, scanner.Err()
}
