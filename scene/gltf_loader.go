package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"pathtracer/core"
	"pathtracer/math"
	"pathtracer/trace"
)

// LoadGLTF reads a .glb or .gltf file into triangles and materials.
// Geometry is taken in mesh-local coordinates; assets are expected to
// be baked for tracing. PBR metallic-roughness maps onto the tracer's
// material model: base color is the albedo and the metallic factor
// becomes the mirror fraction.
func LoadGLTF(path string) ([]trace.Triangle, []Material, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	// Textures
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *Texture
		if img.BufferView != nil {
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				fmt.Fprintf(os.Stderr, "gltf: image %d bufferview: %v\n", *gt.Source, err)
				continue
			}
			tex, err = decodeTextureBytes(fmt.Sprintf("gltf_img_%d", *gt.Source), raw)
			if err != nil {
				fmt.Fprintf(os.Stderr, "gltf: image %d decode: %v\n", *gt.Source, err)
				continue
			}
		} else if img.URI != "" && !img.IsEmbeddedResource() {
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				fmt.Fprintf(os.Stderr, "gltf: image %d (%s): %v\n", *gt.Source, img.URI, err)
				continue
			}
		}
		texCache[i] = tex
	}

	// Materials
	materials := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2])}
			if pbr.BaseColorTexture != nil {
				idx := pbr.BaseColorTexture.Index
				if idx < len(texCache) && texCache[idx] != nil {
					mat.Texture = texCache[idx]
				}
			}
			mat.Reflection = math.Clamp(float32(pbr.MetallicFactorOrDefault()), 0, 1)
		}
		materials[i] = mat
	}

	// Mesh primitives, flattened into one triangle soup.
	var triangles []trace.Triangle
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			tris, err := loadGLTFPrimitive(doc, prim)
			if err != nil {
				fmt.Fprintf(os.Stderr, "gltf: mesh %d prim %d: %v\n", mi, pi, err)
				continue
			}
			triangles = append(triangles, tris...)
		}
	}

	if len(triangles) == 0 {
		return nil, nil, fmt.Errorf("no triangles found in %q", path)
	}
	return triangles, materials, nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into triangles.
func loadGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]trace.Triangle, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	material := int32(-1)
	if prim.Material != nil {
		material = int32(*prim.Material)
	}

	vec := func(i uint32) math.Vec3 {
		p := positions[i]
		return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}

	tris := make([]trace.Triangle, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		tri := trace.NewTriangle(vec(i0), vec(i1), vec(i2), material)
		if int(i2) < len(uvs) && int(i0) < len(uvs) && int(i1) < len(uvs) {
			t0 := math.Vec2{X: uvs[i0][0], Y: uvs[i0][1]}
			t1 := math.Vec2{X: uvs[i1][0], Y: uvs[i1][1]}
			t2 := math.Vec2{X: uvs[i2][0], Y: uvs[i2][1]}
			tri.T0 = t0
			tri.T1 = t1.Sub(t0)
			tri.T2 = t2.Sub(t0)
		}
		tris = append(tris, tri)
	}
	return tris, nil
}

// decodeTextureBytes decodes an embedded image byte slice.
func decodeTextureBytes(name string, data []byte) (*Texture, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	nrgba := imaging.Clone(img)
	return &Texture{
		Name:   name,
		Width:  nrgba.Bounds().Dx(),
		Height: nrgba.Bounds().Dy(),
		Pixels: nrgba.Pix,
	}, nil
}
