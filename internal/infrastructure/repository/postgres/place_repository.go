package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/geo"
)

type PlaceRepository struct {
	db *sql.DB
}

func NewPlaceRepository(db *sql.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) UpsertPlace(ctx context.Context, place domain.Place) error {
	viewport, err := marshalNullable(place.Viewport)
	if err != nil {
		return fmt.Errorf("marshal viewport: %w", err)
	}
	hours, err := marshalNullable(place.OpeningHours)
	if err != nil {
		return fmt.Errorf("marshal opening hours: %w", err)
	}
	loc := place.Location()
	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
INSERT INTO places (place_id, name, address, latitude, longitude, viewport, opening_hours, price_level, category, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (place_id) DO UPDATE SET
	name = EXCLUDED.name,
	address = EXCLUDED.address,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	viewport = EXCLUDED.viewport,
	opening_hours = EXCLUDED.opening_hours,
	price_level = EXCLUDED.price_level,
	category = EXCLUDED.category,
	updated_at = EXCLUDED.updated_at
`, place.PlaceID, place.Name, place.Address, loc.Lat, loc.Lng, viewport, hours, place.PriceLevel, place.Category, now)
	if err != nil {
		return fmt.Errorf("upsert place: %w", err)
	}
	return nil
}

func (r *PlaceRepository) FindPlaces(ctx context.Context, criteria domain.PlaceCriteria) ([]domain.Place, error) {
	var where whereClause
	if criteria.PlaceIDs != nil {
		where.in("place_id", criteria.PlaceIDs)
	}
	if name := strings.TrimSpace(criteria.NameContains); name != "" {
		where.add("name ILIKE " + where.arg("%"+escapeLike(name)+"%"))
	}
	if criteria.Within != nil {
		where.add(haversineWithin(&where, *criteria.Within))
	}

	query := `
SELECT place_id, name, address, latitude, longitude, viewport, opening_hours, price_level, category
FROM places
` + where.String() + `
ORDER BY place_id`

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	places := make([]domain.Place, 0)
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return places, nil
}

// haversineWithin mirrors geo.DistanceMiles so SQL and in-process filtering
// agree on the boundary.
func haversineWithin(w *whereClause, f domain.RadiusFilter) string {
	lat := w.arg(f.Center.Lat)
	lng := w.arg(f.Center.Lng)
	radius := w.arg(geo.EarthRadiusMiles)
	miles := w.arg(f.Miles)
	h := fmt.Sprintf(
		"power(sin(radians(latitude - %[1]s) / 2), 2) + cos(radians(%[1]s)) * cos(radians(latitude)) * power(sin(radians(longitude - %[2]s) / 2), 2)",
		lat, lng,
	)
	return fmt.Sprintf("(2 * %s * asin(sqrt(LEAST(1.0, %s)))) <= %s", radius, h, miles)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlace(row rowScanner) (domain.Place, error) {
	var (
		place    domain.Place
		lat, lng float64
		viewport []byte
		hours    []byte
	)
	if err := row.Scan(
		&place.PlaceID,
		&place.Name,
		&place.Address,
		&lat,
		&lng,
		&viewport,
		&hours,
		&place.PriceLevel,
		&place.Category,
	); err != nil {
		return domain.Place{}, fmt.Errorf("scan place: %w", err)
	}
	place.Geometry = domain.NewGeoJSONPoint(domain.GeoPoint{Lat: lat, Lng: lng})
	if len(viewport) > 0 {
		var vp domain.Viewport
		if err := json.Unmarshal(viewport, &vp); err != nil {
			return domain.Place{}, fmt.Errorf("decode viewport %s: %w", place.PlaceID, err)
		}
		place.Viewport = &vp
	}
	if len(hours) > 0 {
		var oh domain.OpeningHours
		if err := json.Unmarshal(hours, &oh); err != nil {
			return domain.Place{}, fmt.Errorf("decode opening hours %s: %w", place.PlaceID, err)
		}
		place.OpeningHours = &oh
	}
	return place, nil
}
