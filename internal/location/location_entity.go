package location

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRadiusMeters = 1
	MaxRadiusMeters = 10000
)

type Location struct {
	ID           uuid.UUID `gorm:"column:id;type:varchar(36);primaryKey"`
	Name         string    `gorm:"column:name;type:varchar(255);not null"`
	Address      string    `gorm:"column:address;type:varchar(500)"`
	Latitude     float64   `gorm:"column:latitude;not null"`
	Longitude    float64   `gorm:"column:longitude;not null"`
	RadiusMeters int       `gorm:"column:radius_meters;not null;default:100"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Location) TableName() string {
	return "locations"
}
