package types

// City represents a city row together with its owned points of interest.
// PointsOfInterest is nil unless the caller asked for the relation to be
// loaded; callers that branch on the include flag must not rely on emptiness.
type City struct {
	ID               int               `json:"id" xml:"id"`
	Name             string            `json:"name" xml:"name"`
	Description      string            `json:"description" xml:"description"`
	PointsOfInterest []PointOfInterest `json:"pointsOfInterest" xml:"pointsOfInterest>pointOfInterest"`
}

// CitySummary is the transfer shape for city listings, without the POI
// relation. A separate type keeps "not loaded" distinguishable from
// "loaded but empty".
type CitySummary struct {
	ID          int    `json:"id" xml:"id"`
	Name        string `json:"name" xml:"name"`
	Description string `json:"description" xml:"description"`
}

// CityResponse is the full transfer shape, with the POI relation on the
// wire even when the city owns no points of interest.
type CityResponse struct {
	ID               int               `json:"id" xml:"id"`
	Name             string            `json:"name" xml:"name"`
	Description      string            `json:"description" xml:"description"`
	PointsOfInterest []PointOfInterest `json:"pointsOfInterest" xml:"pointsOfInterest>pointOfInterest"`
}

// Summary strips the POI relation.
func (c *City) Summary() CitySummary {
	return CitySummary{ID: c.ID, Name: c.Name, Description: c.Description}
}

// Response builds the full transfer shape. The slice is never nil so an
// empty relation serializes as an empty list instead of disappearing.
func (c *City) Response() CityResponse {
	pois := c.PointsOfInterest
	if pois == nil {
		pois = []PointOfInterest{}
	}
	return CityResponse{ID: c.ID, Name: c.Name, Description: c.Description, PointsOfInterest: pois}
}

// CityFilter restricts a paginated city listing. Name is an exact
// (case-insensitive, post-trim) match; Search is a substring match over
// name or description. Both compose with AND.
type CityFilter struct {
	Name   string
	Search string
}

// IsZero reports whether the filter restricts anything at all.
func (f CityFilter) IsZero() bool {
	return f.Name == "" && f.Search == ""
}
