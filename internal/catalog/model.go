package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryMassage   Category = "MASSAGE"
	CategoryCare      Category = "CARE"
	CategoryTreatment Category = "TREATMENT"
)

type ServiceType string

const (
	ServiceSingle ServiceType = "SINGLE"
	ServiceCombo  ServiceType = "COMBO"
)

type Service struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Category  Category    `json:"category"`
	Type      ServiceType `json:"type"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ServiceDuration is one bookable length/price variant of a Service.
// Price is in minor currency units.
type ServiceDuration struct {
	ID        uuid.UUID `json:"id"`
	ServiceID uuid.UUID `json:"serviceId"`
	Minutes   int       `json:"duration"`
	Price     int64     `json:"price"`
}

type Masseur struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ServiceWithDurations is the read model behind the public service list.
type ServiceWithDurations struct {
	Service
	Durations []ServiceDuration `json:"durations"`
}
