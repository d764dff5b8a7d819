package domain

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoJSONPoint stores coordinates in GeoJSON order: [longitude, latitude].
type GeoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewGeoJSONPoint(p GeoPoint) GeoJSONPoint {
	return GeoJSONPoint{Type: "Point", Coordinates: [2]float64{p.Lng, p.Lat}}
}

func (p GeoJSONPoint) LatLng() GeoPoint {
	return GeoPoint{Lat: p.Coordinates[1], Lng: p.Coordinates[0]}
}

type Viewport struct {
	Low  GeoPoint `json:"low"`
	High GeoPoint `json:"high"`
}

// DayTime is a weekday (0 = Sunday) plus a wall-clock time in HHMM form.
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

type OpeningPeriod struct {
	Open  DayTime  `json:"open"`
	Close *DayTime `json:"close,omitempty"`
}

type OpeningHours struct {
	Periods []OpeningPeriod `json:"periods"`
}

type Place struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	Geometry     GeoJSONPoint  `json:"geometry"`
	Viewport     *Viewport     `json:"viewport,omitempty"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
	PriceLevel   int           `json:"price_level,omitempty"`
	Category     string        `json:"category,omitempty"`
}

func (p Place) Location() GeoPoint {
	return p.Geometry.LatLng()
}
