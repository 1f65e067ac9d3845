package shader

import "strings"

// ────────────────────────────────── Desktop GL ──────────────────────────────────

// The full-screen triangle covers clip space with three vertices generated
// from gl_VertexID, so no vertex buffer is bound.
const fullscreenVertexGL = `#version 410 core
out vec2 frag_uv;
void main() {
    vec2 p = vec2(float((gl_VertexID << 1) & 2), float(gl_VertexID & 2));
    frag_uv = p;
    gl_Position = vec4(p * 2.0 - 1.0, 0.0, 1.0);
}
`

const blitFragmentShaderSourceFlipGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const fullscreenVertexGLES = `#version 300 es
out vec2 frag_uv;
void main() {
    vec2 p = vec2(float((gl_VertexID << 1) & 2), float(gl_VertexID & 2));
    frag_uv = p;
    gl_Position = vec4(p * 2.0 - 1.0, 0.0, 1.0);
}
`

const blitFragmentShaderSourceFlipGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const blitFragmentShaderSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ─────────────────────────── WebGL2 material sources ───────────────────────────
//
// Material passes are written against WebGL2 and translated for the running
// context. The translator renames varyings, so these stages reconstruct
// everything from gl_FragCoord and globals instead of passing data between
// stages.

const raymarchPreamble = `#version 300 es
precision highp float;
precision highp int;

uniform mat4 _InvProjMat;
uniform mat4 _InvViewMat;
uniform mat4 _CameraVP;
uniform vec4 _CameraPos;
uniform vec4 _ScreenParams;
uniform vec4 _Time;

out vec4 fragColor;

#define MAX_STEPS 160
#define MAX_DIST 100.0
#define SURF_EPS 0.0005
`

// DefaultScene is the distance field rendered when no scene is configured.
// A scene defines map(p), the signed distance to the nearest surface, and
// albedo(p).
const DefaultScene = `
float sdTorus(vec3 p, vec2 t) {
    vec2 q = vec2(length(p.xz) - t.x, p.y);
    return length(q) - t.y;
}

float smin(float a, float b, float k) {
    float h = clamp(0.5 + 0.5 * (b - a) / k, 0.0, 1.0);
    return mix(b, a, h) - k * h * (1.0 - h);
}

float map(vec3 p) {
    vec3 c = vec3(0.0, 0.9 + 0.35 * sin(_Time.y), 0.0);
    float sphere = length(p - c) - 0.75;
    float torus = sdTorus(p - vec3(0.0, 0.5, 0.0), vec2(1.6, 0.2));
    return smin(sphere, torus, 0.3);
}

vec3 albedo(vec3 p) {
    return mix(vec3(0.9, 0.35, 0.2), vec3(0.2, 0.5, 0.9), smoothstep(1.1, 1.4, length(p.xz)));
}
`

const raymarchMain = `
vec3 calcNormal(vec3 p) {
    const vec2 e = vec2(0.0005, 0.0);
    return normalize(vec3(
        map(p + e.xyy) - map(p - e.xyy),
        map(p + e.yxy) - map(p - e.yxy),
        map(p + e.yyx) - map(p - e.yyx)));
}

vec3 unproject(vec2 ndc, float z) {
    vec4 v = _InvProjMat * vec4(ndc, z, 1.0);
    v /= v.w;
    return (_InvViewMat * vec4(v.xyz, 1.0)).xyz;
}

void main() {
    vec2 ndc = gl_FragCoord.xy / _ScreenParams.xy * 2.0 - 1.0;
    // Near and far plane points work for both projections.
    vec3 ro = unproject(ndc, -1.0);
    vec3 rd = normalize(unproject(ndc, 1.0) - ro);

    float t = 0.0;
    bool hit = false;
    for (int i = 0; i < MAX_STEPS; i++) {
        float d = map(ro + rd * t);
        if (d < SURF_EPS * max(1.0, t)) {
            hit = true;
            break;
        }
        t += d;
        if (t > MAX_DIST) {
            break;
        }
    }
    if (!hit) {
        discard;
    }

    vec3 p = ro + rd * t;
    vec3 n = calcNormal(p);
    vec3 l = normalize(vec3(0.6, 0.8, 0.4));
    float diff = max(dot(n, l), 0.0);
    vec3 h = normalize(l - rd);
    float spec = pow(max(dot(n, h), 0.0), 32.0);
    vec3 col = albedo(p) * (0.15 + 0.85 * diff) + vec3(0.3) * spec;
    float fog = 1.0 - exp(-0.02 * distance(p, _CameraPos.xyz));
    col = mix(col, vec3(0.55, 0.65, 0.8), fog);

    vec4 clip = _CameraVP * vec4(p, 1.0);
    gl_FragDepth = clip.z / clip.w * 0.5 + 0.5;
    fragColor = vec4(col, 1.0);
}
`

// FloorVertex emits two triangles spanning a square of the y=0 plane. It is
// drawn with six vertices and no vertex buffer.
const FloorVertex = `#version 300 es
uniform mat4 _MatrixVP;
const float EXTENT = 12.0;
void main() {
    int idx[6] = int[6](0, 1, 2, 2, 1, 3);
    int c = idx[gl_VertexID % 6];
    vec2 xz = vec2(float(c & 1), float(c >> 1)) * 2.0 - 1.0;
    gl_Position = _MatrixVP * vec4(xz.x * EXTENT, 0.0, xz.y * EXTENT, 1.0);
}
`

// FloorFragment shades a checkerboard, recovering the world position from
// the fragment's window coordinates and depth.
const FloorFragment = `#version 300 es
precision highp float;
uniform mat4 _MatrixInvVP;
uniform vec4 _ScreenParams;
out vec4 fragColor;
void main() {
    vec2 ndc = gl_FragCoord.xy / _ScreenParams.xy * 2.0 - 1.0;
    vec4 w = _MatrixInvVP * vec4(ndc, gl_FragCoord.z * 2.0 - 1.0, 1.0);
    vec3 p = w.xyz / w.w;
    float c = mod(floor(p.x) + floor(p.z), 2.0);
    vec3 col = mix(vec3(0.22), vec3(0.7), c);
    col *= 1.0 - smoothstep(6.0, 12.0, length(p.xz)) * 0.6;
    fragColor = vec4(col, 1.0);
}
`

// DepthOnlyFragment is used by depth prepass stages; color writes are
// masked off by the pass state.
const DepthOnlyFragment = `#version 300 es
precision mediump float;
out vec4 fragColor;
void main() { fragColor = vec4(0.0); }
`

// ────────────────────────────────── Public API ─────────────────────────────────

// FullscreenVertex returns the vertex stage used by passes that do not
// provide their own.
func FullscreenVertex(isGLES bool) string {
	if isGLES {
		return fullscreenVertexGLES
	}
	return fullscreenVertexGL
}

func GetBlitFragmentShader(flip, isGLES bool) string {
	if isGLES {
		if flip {
			return blitFragmentShaderSourceFlipGLES
		}
		return blitFragmentShaderSourceGLES
	}
	if flip {
		return blitFragmentShaderSourceFlipGL
	}
	return blitFragmentShaderSourceGL
}

// RaymarchFragment wraps scene, a distance field defining map and albedo,
// into the RAYMARCH_DEPTH fragment stage. An empty scene selects
// DefaultScene.
func RaymarchFragment(scene string) string {
	if strings.TrimSpace(scene) == "" {
		scene = DefaultScene
	}
	return raymarchPreamble + scene + raymarchMain
}

// IsComplete reports whether src is a full stage with its own #version
// line, as opposed to a scene snippet.
func IsComplete(src string) bool {
	return strings.HasPrefix(strings.TrimSpace(src), "#version")
}

// Complete returns src unchanged when it is a full stage and otherwise
// wraps it as a raymarch scene.
func Complete(src string) string {
	if IsComplete(src) {
		return src
	}
	return RaymarchFragment(src)
}
