// Package geo renders widget geo constraints as backend geo filter clauses.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchbridge/internal/domain"
)

// DefaultField is the geo location field used when none is configured.
const DefaultField = "_geoloc"

// Query holds the geo parameters of one widget request as received.
// InsideBoundingBox and InsidePolygon accept a comma-joined string, a flat
// array, or a nested array whose first element is used. AroundRadius is in meters.
type Query struct {
	InsideBoundingBox any
	AroundLatLng      string
	AroundRadius      any
	InsidePolygon     any
}

// Adapt returns the filter clause for the first constraint present, checked in
// the order bounding box, around lat/lng, polygon. It returns "" when none is set.
func Adapt(q Query, field string) (string, error) {
	if field == "" {
		field = DefaultField
	}

	switch {
	case !isEmpty(q.InsideBoundingBox):
		return boundingBox(q.InsideBoundingBox, field)
	case q.AroundLatLng != "":
		return around(q.AroundLatLng, q.AroundRadius, field)
	case !isEmpty(q.InsidePolygon):
		return polygon(q.InsidePolygon, field)
	}
	return "", nil
}

// boundingBox emits the rectangle corners clockwise from (x1, y1).
func boundingBox(v any, field string) (string, error) {
	c, err := coordinates(v)
	if err != nil {
		return "", err
	}
	if len(c) != 4 {
		return "", domain.NewGeoFilterError(fmt.Sprintf("insideBoundingBox needs 4 coordinates, got %d", len(c)))
	}
	x1, y1, x2, y2 := c[0], c[1], c[2], c[3]
	return fmt.Sprintf("%s:(%s, %s, %s, %s, %s, %s, %s, %s)", field, x1, y1, x1, y2, x2, y2, x2, y1), nil
}

func around(latLng string, radius any, field string) (string, error) {
	r, ok := meters(radius)
	if !ok {
		return "", domain.NewGeoFilterError(domain.MessageRadiusRequired)
	}
	km := strconv.FormatFloat(r/1000, 'f', -1, 64)
	return fmt.Sprintf("%s:(%s, %s km)", field, latLng, km), nil
}

func polygon(v any, field string) (string, error) {
	c, err := coordinates(v)
	if err != nil {
		return "", err
	}
	if len(c) == 0 || len(c)%2 != 0 {
		return "", domain.NewGeoFilterError(fmt.Sprintf("insidePolygon needs an even number of coordinates, got %d", len(c)))
	}
	return field + ":(" + strings.Join(c, ",") + ")", nil
}

// meters accepts finite positive numbers, including numeric strings such as
// "10000". Anything else, "all" included, is rejected.
func meters(v any) (float64, bool) {
	var f float64
	switch r := v.(type) {
	case float64:
		f = r
	case float32:
		f = float64(r)
	case int:
		f = float64(r)
	case int64:
		f = float64(r)
	case json.Number:
		n, err := r.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

// coordinates flattens the accepted shapes into trimmed coordinate strings.
func coordinates(v any) ([]string, error) {
	switch c := v.(type) {
	case string:
		parts := strings.Split(c, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case []string:
		return c, nil
	case []float64:
		out := make([]string, len(c))
		for i, f := range c {
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return out, nil
	case [][]float64:
		if len(c) == 0 {
			return nil, nil
		}
		return coordinates(c[0])
	case []any:
		if len(c) > 0 {
			if inner, ok := c[0].([]any); ok {
				return coordinates(inner)
			}
		}
		out := make([]string, len(c))
		for i, e := range c {
			s, err := scalar(e)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, domain.NewGeoFilterError(fmt.Sprintf("unsupported geo coordinates %T", v))
}

func scalar(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(s), nil
	case json.Number:
		return s.String(), nil
	}
	return "", domain.NewGeoFilterError(fmt.Sprintf("unsupported geo coordinate %v", v))
}

func isEmpty(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case string:
		return c == ""
	case []any:
		return len(c) == 0
	case []string:
		return len(c) == 0
	case []float64:
		return len(c) == 0
	case [][]float64:
		return len(c) == 0
	}
	return false
}
