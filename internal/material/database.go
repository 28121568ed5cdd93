package material

import "fmt"

// Database is the immutable catalog of materials, keyed by color. It is
// built once (LoadStructuralText/LoadElectricalText) and never mutated afterward, so it is safe to share
// across the mechanical-solver worker pool without locking.
type Database struct {
	structural map[ColorKey]*Material
	electrical map[ColorKey]*Material

	background ColorKey
	rope       *Material
}

// NewDatabase constructs an empty Database; use LoadStructuralText or AddStructural/
// AddElectrical to populate it.
func NewDatabase() *Database {
	return &Database{
		structural: make(map[ColorKey]*Material),
		electrical: make(map[ColorKey]*Material),
	}
}

// AddStructural registers a structural material under its color key.
func (d *Database) AddStructural(m *Material) {
	d.structural[m.Color] = m
	if m.Structural.IsRope {
		d.rope = m
	}
}

// AddElectrical decorates an existing structural material's color with
// electrical attributes. the load fails if an electrical pixel
// sits on a background (i.e. unregistered) particle; callers surface that as
// ErrMaterialNotFound.
func (d *Database) AddElectrical(color ColorKey, e *Electrical) error {
	base, ok := d.structural[color]
	if !ok {
		return fmt.Errorf("%w: electrical color %v has no structural material", ErrMaterialNotFound, color)
	}
	decorated := *base
	decorated.Electrical = e
	d.structural[color] = &decorated
	d.electrical[color] = &decorated
	return nil
}

// SetBackground records the color treated as "not a particle" when scanning
// a structural layer.
func (d *Database) SetBackground(c ColorKey) { d.background = c }

// IsBackground reports whether c is the background color.
func (d *Database) IsBackground(c ColorKey) bool { return c == d.background }

// Lookup returns the material registered for c, or (nil, false).
func (d *Database) Lookup(c ColorKey) (*Material, bool) {
	m, ok := d.structural[c]
	return m, ok
}

// Rope returns the database's rope material, or nil if none was registered.
func (d *Database) Rope() *Material { return d.rope }

// Validate checks the invariants a loaded database must satisfy: at
// least one rope material and a registered background color.
func (d *Database) Validate() error {
	if d.rope == nil {
		return fmt.Errorf("%w: no rope material registered", ErrInvalidDatabase)
	}
	if _, ok := d.structural[d.background]; !ok {
		return fmt.Errorf("%w: background color %v is not registered", ErrInvalidDatabase, d.background)
	}
	return nil
}

// Len reports the number of distinct structural materials registered.
func (d *Database) Len() int { return len(d.structural) }
