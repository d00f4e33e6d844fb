package terrain

import (
	"fmt"
	"strings"
)

// VertexShaderSource passes the elevation sample through to the blend shader.
const VertexShaderSource = `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aTexCoord;
layout(location = 3) in float aAmount;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec2 vUV;
out float vAmount;
out vec3 vNormal;

void main() {
    vUV = aTexCoord;
    vAmount = aAmount;
    vNormal = aNormal;
    gl_Position = uViewProj * uModel * vec4(aPosition, 1.0);
}
`

// SamplerUniform returns the GLSL uniform name bound to a material texture.
func SamplerUniform(m Material) string {
	name := m.String()
	return "u" + strings.ToUpper(name[:1]) + name[1:]
}

// FragmentShaderSource renders the Bands table as GLSL so the GPU path and
// Blend share one definition.
func FragmentShaderSource() string {
	var b strings.Builder
	b.WriteString("#version 410 core\n")
	b.WriteString("in vec2 vUV;\nin float vAmount;\nin vec3 vNormal;\n\n")
	for _, m := range Materials() {
		fmt.Fprintf(&b, "uniform sampler2D %s;\n", SamplerUniform(m))
	}
	b.WriteString("uniform float uLevel;\nuniform vec3 uLightDir;\n\n")
	b.WriteString("out vec4 FragColor;\n\n")
	b.WriteString("void main() {\n")
	b.WriteString("    float density = exp2(uLevel);\n")
	b.WriteString("    vec3 color = vec3(0.0);\n")
	for _, m := range Materials() {
		band := Bands[m]
		fmt.Fprintf(&b, "    // %s\n", m)
		fmt.Fprintf(&b, "    float w%s = smoothstep(%.4f, %.4f, vAmount)", m, band.RiseStart, band.RiseEnd)
		if band.Falls {
			fmt.Fprintf(&b, " - smoothstep(%.4f, %.4f, vAmount)", band.FallStart, band.FallEnd)
		}
		b.WriteString(";\n")
		fmt.Fprintf(&b, "    color += w%s * texture(%s, vUV * %.4f * density).rgb;\n",
			m, SamplerUniform(m), band.Repeat)
	}
	b.WriteString("    float diffuse = max(dot(normalize(vNormal), normalize(uLightDir)), 0.0) * 0.6 + 0.4;\n")
	b.WriteString("    FragColor = vec4(clamp(color * diffuse, 0.0, 1.0), 1.0);\n")
	b.WriteString("}\n")
	return b.String()
}
