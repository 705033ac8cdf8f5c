package math

/**
 * @brief Creates a transform value with the given position, rotation and scale.
 * The local matrix is marked dirty and built on first use.
 */
func NewTransform(position Vec3, rotation Quaternion, scale Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
		IsDirty:  true,
		Local:    NewMat4Identity(),
	}
}

// NewTransformUniform places an unrotated copy at position with the same
// scale on every axis.
func NewTransformUniform(position Vec3, scale float32) Transform {
	return NewTransform(position, NewQuatIdentity(), NewVec3Splat(scale))
}

// UniformScale reports the X scale, which equals Y and Z for every
// transform the fractal generators emit.
func (t Transform) UniformScale() float32 {
	return t.Scale.X
}

/**
 * @brief Returns the local transformation matrix, rebuilding it if the
 * position, rotation or scale changed since the last call.
 */
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty {
		rt := t.Rotation.ToMat4().Mul(NewMat4Translation(t.Position))
		t.Local = NewMat4Scale(t.Scale).Mul(rt)
		t.IsDirty = false
	}
	return t.Local
}

func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	l := t.GetLocal()
	if t.Parent != nil {
		return l.Mul(t.Parent.GetWorld())
	}
	return l
}

// Equal compares position, rotation and scale within tolerance. The cached
// matrix and parent are ignored.
func (t Transform) Equal(other Transform, tolerance float32) bool {
	return t.Position.Compare(other.Position, tolerance) &&
		Vec4(t.Rotation).Compare(Vec4(other.Rotation), tolerance) &&
		t.Scale.Compare(other.Scale, tolerance)
}
