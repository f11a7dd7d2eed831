package kernel

// fragmentShaderWGSL is the portable hardware counterpart of Draw's
// texture sample, csb and opacity stages, expressed as a WGSL fragment
// shader (levels, keys, blend modes and keyers are not in it). The
// hardware backend compiles it through naga when attached; rendering
// itself still goes through the software Draw/DrawKey.
const fragmentShaderWGSL = `
struct Uniforms {
  levels_on: u32,
  csb_on: u32,
  brightness: f32,
  saturation: f32,
  contrast: f32,
  opacity: f32,
}

@group(0) @binding(0) var<uniform> params: Uniforms;
@group(0) @binding(1) var src: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
  var color = textureSample(src, samp, uv);
  if (params.csb_on != 0u) {
    let bright = color.rgb * params.brightness;
    let lum = dot(bright, vec3<f32>(0.2125, 0.7154, 0.0721));
    let sat = lum + (bright - lum) * params.saturation;
    color = vec4<f32>(0.5 + (sat - 0.5) * params.contrast, color.a);
  }
  color.a = color.a * params.opacity;
  return color;
}
`

// ShaderSource returns the portable WGSL shader source compiled by the
// hardware backend. Exported so gpubackend, which must not import kernel's
// unexported internals, can reach it.
func ShaderSource() string {
	return fragmentShaderWGSL
}
