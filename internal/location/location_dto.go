package location

import "time"

type CreateLocationRequest struct {
	Name         string   `json:"name" binding:"required,max=255"`
	Address      string   `json:"address" binding:"max=500"`
	Latitude     *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	RadiusMeters *int     `json:"radius_meters" binding:"omitempty,gte=1,lte=10000"`
	IsActive     *bool    `json:"is_active"`
}

type UpdateLocationRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=255"`
	Address      *string  `json:"address" binding:"omitempty,max=500"`
	Latitude     *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	RadiusMeters *int     `json:"radius_meters" binding:"omitempty,gte=1,lte=10000"`
	IsActive     *bool    `json:"is_active"`
}

type LocationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters int       `json:"radius_meters"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
