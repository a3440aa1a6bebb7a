package render

import (
	stdmath "math"

	"pathtracer/core"
	"pathtracer/math"
	"pathtracer/scene"
	"pathtracer/trace"
)

// Integrator estimates radiance along camera rays with unidirectional
// path tracing: next-event estimation at diffuse bounces, multiple
// importance weighting of the light PDF, Russian-roulette termination
// and pure specular reflection/refraction.
type Integrator struct {
	Scene  *scene.Scene
	Config *Config
}

// maxPathLength bounds roulette-driven paths; survival can reach 1 in
// an all-white enclosure, where only an emitter hit ends the walk.
const maxPathLength = 1024

// refractDirection bends d through an interface with unit normal n
// (oriented against d). angle is -d.n and eta the relative index. The
// second result is false on total internal reflection.
func refractDirection(d, n math.Vec3, angle, eta float32) (math.Vec3, bool) {
	k := 1 - eta*eta*(1-angle*angle)
	if k < 0 {
		return math.Vec3{}, false
	}
	return d.Mul(eta).Add(n.Mul(eta*angle - float32(stdmath.Sqrt(float64(k))))).Normalize(), true
}

// beerAttenuation is the Beer-Lambert transmittance after travelling
// dist through a medium of the given color and density.
func beerAttenuation(albedo core.Color, density, dist float32) core.Color {
	e := albedo.Sub(core.ColorWhite).Mul(density * dist) // -(1-albedo)*density*dist
	return core.Color{
		R: float32(stdmath.Exp(float64(e.R))),
		G: float32(stdmath.Exp(float64(e.G))),
		B: float32(stdmath.Exp(float64(e.B))),
	}
}

// Sample traces one path and returns its radiance estimate. When pixel
// is non-nil the first hit fills the G-buffer and the path runs
// against a white albedo (demodulation); the filter multiplies the
// stored albedo back after smoothing.
func (in *Integrator) Sample(r trace.Ray, pixel *PixelData, rng *math.RNG) core.Color {
	cfg := in.Config
	sc := in.Scene

	specular := true
	throughput := core.ColorWhite
	emitted := core.ColorBlack

	for depth := 0; depth < maxPathLength && (cfg.UseRussianRoulette || depth < cfg.MaxDepth); depth++ {
		lightIdx := sc.IntersectLights(&r)

		var bvhDepth int
		var bvhDepthPtr *int
		if cfg.VisualizeBVH {
			bvhDepthPtr = &bvhDepth
		}
		found := sc.Intersect(&r, bvhDepthPtr)

		if cfg.VisualizeBVH {
			return core.NewColor(0, math.Clamp(0.02*float32(bvhDepth), 0, 1), 0)
		}

		// The ray left the surface set: emitters, the sky map, or the
		// default sky color.
		if !found {
			var noHitColor core.Color
			interPoint := math.NewVec3(float32(stdmath.Inf(1)), float32(stdmath.Inf(1)), float32(stdmath.Inf(1)))
			interNormal := r.Direction.Negate()

			if lightIdx >= 0 {
				light := &sc.Lights[lightIdx]
				interPoint = r.HitPoint()
				interNormal = light.NormalAt(interPoint)
				if specular || !cfg.UseNEE {
					noHitColor = light.Color
				}
				// A diffuse ray reaching the light adds nothing: its
				// direct contribution was already taken at the bounce.
			} else if sc.Sky != nil {
				noHitColor = sc.Sky.FindColor(r.Direction)
			} else {
				noHitColor = scene.SkyDefaultColor
			}

			if depth == 0 && pixel != nil {
				pixel.InterNormal = interNormal
				pixel.FirstIntersect = interPoint
				pixel.MaterialIndex = MaterialMiss
				pixel.Albedo = noHitColor
				noHitColor = core.ColorWhite
			}
			emitted = emitted.Add(throughput.MulColor(noHitColor))
			break
		}

		interPoint := r.HitPoint()
		var interNormal math.Vec3
		var matIndex int32
		switch r.HitKind {
		case trace.HitSphere:
			sp := &sc.Spheres[r.HitIndex]
			interNormal = sp.NormalAt(interPoint)
			matIndex = sp.Material
		default:
			tri := &sc.Triangles[r.HitIndex]
			interNormal = tri.Normal
			matIndex = tri.Material
		}

		mat := sc.MaterialFor(matIndex)
		albedo := mat.Albedo
		if mat.Texture != nil {
			var uv math.Vec2
			if r.HitKind == trace.HitSphere {
				uv = sc.Spheres[r.HitIndex].UVAt(interPoint)
			} else {
				uv = sc.Triangles[r.HitIndex].UVAt(interPoint)
			}
			albedo = mat.ColorAt(uv)
		}

		angle := -r.Direction.Dot(interNormal)
		backfacing := angle < 0
		if backfacing {
			interNormal = interNormal.Negate()
			angle = -angle
		}

		if depth == 0 && pixel != nil {
			pixel.InterNormal = interNormal
			pixel.FirstIntersect = interPoint
			pixel.MaterialIndex = matIndex
			pixel.Albedo = albedo
			albedo = core.ColorWhite
		}

		// Stochastic branch selection.
		u := rng.Float()
		refract := u < mat.Refraction
		reflect := !refract && u < mat.Refraction+mat.Reflection

		if refract {
			eta := 1 / mat.IoR
			if backfacing {
				eta = mat.IoR
			}
			if dir, ok := refractDirection(r.Direction, interNormal, angle, eta); ok {
				if backfacing && mat.Density > 0 {
					throughput = throughput.MulColor(beerAttenuation(albedo, mat.Density, r.T))
				}
				throughput = throughput.MulColor(albedo)
				r = trace.NewRay(interPoint, dir)
				r.Offset(trace.Epsilon)
				specular = true
				continue
			}
			// Total internal reflection falls through to the mirror.
			reflect = true
		}

		if reflect {
			throughput = throughput.MulColor(albedo)
			r = trace.NewRay(interPoint, r.Direction.Reflect(interNormal))
			r.Offset(trace.Epsilon)
			specular = true
			continue
		}

		// Diffuse bounce.
		brdf := albedo.Mul(math.InvPi)

		if cfg.UseNEE && len(sc.Lights) > 0 {
			direct := in.sampleDirect(interPoint, interNormal, brdf, rng)
			emitted = emitted.Add(throughput.MulColor(direct))
		}

		if cfg.UseRussianRoulette {
			survival := math.Clamp(albedo.Max(), 0.1, 1.0)
			if rng.Float() > survival {
				break
			}
			throughput = throughput.Mul(1 / survival)
		}

		// For cosine-weighted sampling BRDF*cos/pdf collapses to the
		// albedo.
		throughput = throughput.MulColor(albedo)
		r = trace.NewRay(interPoint, math.CosineWeightedDirection(rng, interNormal))
		r.Offset(trace.Epsilon)
		specular = false
	}

	return emitted
}

// sampleDirect performs next-event estimation: it connects the shading
// point to sampled light points and returns the averaged, PDF-weighted
// direct radiance (throughput excluded).
func (in *Integrator) sampleDirect(point, normal math.Vec3, brdf core.Color, rng *math.RNG) core.Color {
	cfg := in.Config
	sc := in.Scene

	sum := core.ColorBlack
	for s := 0; s < cfg.LightSamples; s++ {
		light := &sc.Lights[rng.Index(len(sc.Lights))]

		lightPoint := light.SamplePoint(rng)
		toLight := lightPoint.Sub(point)
		dist := toLight.Length()
		if dist <= 0 {
			continue
		}
		toLight = toLight.Mul(1 / dist)

		cosI := normal.Dot(toLight)
		cosO := light.NormalAt(lightPoint).Dot(toLight.Negate())
		if cosI <= 0 || cosO <= 0 {
			continue
		}

		shadow := trace.NewRay(point, toLight)
		shadow.Offset(trace.Epsilon)
		shadow.T = dist - 2*trace.Epsilon
		if sc.Occluded(&shadow) {
			continue
		}

		solidAngle := cosO * light.Area() / (dist * dist)
		pdf := 1 / solidAngle
		if cfg.UseMIS {
			// Balance heuristic: add the BSDF's density for the same
			// direction.
			pdf += cosI * math.InvPi
		}

		sum = sum.Add(brdf.MulColor(light.Color).Mul(cosI / pdf))
	}

	// Picking one of N lights uniformly scales the estimate by N.
	norm := float32(len(sc.Lights)) / float32(cfg.LightSamples)
	return sum.Mul(norm)
}
