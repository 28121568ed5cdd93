package core

// Size describes the pixel dimensions of a decoded ship layer.
type Size struct {
	W int
	H int
}

// ParticleIndex addresses a particle inside a particle.Store.
type ParticleIndex int32

// SpringIndex addresses a spring inside a mesh.Mesh.
type SpringIndex int32

// TriangleIndex addresses a triangle inside a mesh.Mesh.
type TriangleIndex int32

// NoParticle is the sentinel "no index" value, mirroring how an ephemeral
// allocator signals exhaustion without a ParticleIndex, bool pair.
const NoParticle ParticleIndex = -1

// NoSpring is the sentinel "no index" value for an absent spring reference.
const NoSpring SpringIndex = -1

// NoTriangle is the sentinel "no index" value for an absent triangle reference.
const NoTriangle TriangleIndex = -1
