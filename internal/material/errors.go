package material

import "errors"

// ErrMaterialNotFound is returned when a ship layer references a color the
// database has no entry for.
var ErrMaterialNotFound = errors.New("material not found")

// ErrInvalidDatabase is returned by Validate when the loaded database is
// missing a required entry: at least one rope material, or a registered
// background color.
var ErrInvalidDatabase = errors.New("invalid material database")

// ErrMalformedRecord is returned by the text-database loader when a record
// cannot be parsed.
var ErrMalformedRecord = errors.New("malformed material record")
