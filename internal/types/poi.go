package types

// DefaultDescription is applied by the store when no description is given.
const DefaultDescription = "Description not provided"

// PointOfInterest is a named place owned by exactly one city. The owning
// city never changes for the lifetime of the row.
type PointOfInterest struct {
	ID          int    `json:"id" xml:"id"`
	Name        string `json:"name" xml:"name"`
	Description string `json:"description" xml:"description"`
	CityID      int    `json:"-" xml:"-"`
}

// POIForCreation is the request shape for creating a point of interest.
type POIForCreation struct {
	Name        string `json:"name" xml:"name" validate:"required,max=50"`
	Description string `json:"description,omitempty" xml:"description,omitempty" validate:"max=150"`
}

// POIForUpdate is the request shape for full replacement. Missing optional
// fields overwrite the stored value with their zero value; this is a full
// replace, not a merge. PATCH documents are applied against this shape and
// re-validated with the same constraints as creation.
type POIForUpdate struct {
	Name        string `json:"name" xml:"name" validate:"required,max=50"`
	Description string `json:"description" xml:"description" validate:"max=150"`
}
