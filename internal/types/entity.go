package types

import (
	"strconv"
	"time"
)

// EntityType tags the fleet entity variants.
type EntityType string

const (
	EntityTypeDriver  EntityType = "driver"
	EntityTypeVehicle EntityType = "vehicle"
	EntityTypeTrip    EntityType = "trip"
	EntityTypePayout  EntityType = "payout"
)

// EntityTypes lists every entity type in canonical order.
func EntityTypes() []EntityType {
	return []EntityType{EntityTypeDriver, EntityTypeVehicle, EntityTypeTrip, EntityTypePayout}
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeDriver, EntityTypeVehicle, EntityTypeTrip, EntityTypePayout:
		return true
	}
	return false
}

// ParseEntityType accepts singular or plural names ("driver", "drivers").
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "driver", "drivers":
		return EntityTypeDriver, nil
	case "vehicle", "vehicles":
		return EntityTypeVehicle, nil
	case "trip", "trips":
		return EntityTypeTrip, nil
	case "payout", "payouts":
		return EntityTypePayout, nil
	}
	return "", &ValidationError{Field: "entityType", Reason: "unknown entity type " + strconv.Quote(s)}
}

// Entity is a snapshot of one fleet record.
//
// Field exposes every attribute as text for filtering and search, Date exposes
// temporal attributes and Number exposes numeric metrics. Names are the JSON
// field names of the concrete type.
type Entity interface {
	EntityID() string
	Kind() EntityType
	DisplayName() string
	Field(name string) (string, bool)
	Date(name string) (time.Time, bool)
	Number(name string) (float64, bool)
}

// Driver is a fleet driver.
type Driver struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone,omitempty"`
	Status        string  `json:"status"` // active, inactive, suspended
	Vehicle       string  `json:"vehicle,omitempty"`
	Location      string  `json:"location,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	TotalTrips    int     `json:"totalTrips"`
	Earnings      float64 `json:"earnings"`
	JoinDate      *Date   `json:"joinDate,omitempty"`
	LicenseExpiry *Date   `json:"licenseExpiry,omitempty"`
}

func (d *Driver) EntityID() string    { return d.ID }
func (d *Driver) Kind() EntityType    { return EntityTypeDriver }
func (d *Driver) DisplayName() string { return firstNonEmpty(d.Name, d.ID) }

func (d *Driver) Field(name string) (string, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "name":
		return d.Name, true
	case "phone":
		return d.Phone, true
	case "status":
		return d.Status, true
	case "vehicle":
		return d.Vehicle, true
	case "location":
		return d.Location, true
	case "rating":
		return formatNumber(d.Rating), d.Rating > 0
	case "totalTrips":
		return strconv.Itoa(d.TotalTrips), true
	case "earnings":
		return formatNumber(d.Earnings), true
	case "joinDate":
		return dateField(d.JoinDate)
	case "licenseExpiry":
		return dateField(d.LicenseExpiry)
	}
	return "", false
}

func (d *Driver) Date(name string) (time.Time, bool) {
	switch name {
	case "joinDate":
		return dateValue(d.JoinDate)
	case "licenseExpiry":
		return dateValue(d.LicenseExpiry)
	}
	return time.Time{}, false
}

func (d *Driver) Number(name string) (float64, bool) {
	switch name {
	case "rating":
		// Zero means "not yet rated".
		return d.Rating, d.Rating > 0
	case "totalTrips":
		return float64(d.TotalTrips), true
	case "earnings":
		return d.Earnings, true
	}
	return 0, false
}

// Vehicle is a fleet vehicle with its compliance documents.
type Vehicle struct {
	ID              string  `json:"id"`
	RegistrationNo  string  `json:"registrationNo"`
	Model           string  `json:"model,omitempty"`
	BodyType        string  `json:"bodyType,omitempty"`
	Year            int     `json:"year,omitempty"`
	Driver          string  `json:"driver,omitempty"`
	Status          string  `json:"status"` // active, maintenance, inactive, expired
	FuelType        string  `json:"fuelType,omitempty"`
	Mileage         float64 `json:"mileage,omitempty"`
	LastService     *Date   `json:"lastService,omitempty"`
	NextService     *Date   `json:"nextService,omitempty"`
	InsuranceExpiry *Date   `json:"insuranceExpiry,omitempty"`
	FitnessExpiry   *Date   `json:"fitnessExpiry,omitempty"`
	PermitExpiry    *Date   `json:"permitExpiry,omitempty"`
}

func (v *Vehicle) EntityID() string    { return v.ID }
func (v *Vehicle) Kind() EntityType    { return EntityTypeVehicle }
func (v *Vehicle) DisplayName() string { return firstNonEmpty(v.RegistrationNo, v.ID) }

func (v *Vehicle) Field(name string) (string, bool) {
	switch name {
	case "id":
		return v.ID, true
	case "registrationNo":
		return v.RegistrationNo, true
	case "model":
		return v.Model, true
	case "bodyType":
		return v.BodyType, true
	case "year":
		return strconv.Itoa(v.Year), v.Year > 0
	case "driver":
		return v.Driver, true
	case "status":
		return v.Status, true
	case "fuelType":
		return v.FuelType, true
	case "mileage":
		return formatNumber(v.Mileage), true
	case "lastService":
		return dateField(v.LastService)
	case "nextService":
		return dateField(v.NextService)
	case "insuranceExpiry":
		return dateField(v.InsuranceExpiry)
	case "fitnessExpiry":
		return dateField(v.FitnessExpiry)
	case "permitExpiry":
		return dateField(v.PermitExpiry)
	}
	return "", false
}

func (v *Vehicle) Date(name string) (time.Time, bool) {
	switch name {
	case "lastService":
		return dateValue(v.LastService)
	case "nextService":
		return dateValue(v.NextService)
	case "insuranceExpiry":
		return dateValue(v.InsuranceExpiry)
	case "fitnessExpiry":
		return dateValue(v.FitnessExpiry)
	case "permitExpiry":
		return dateValue(v.PermitExpiry)
	}
	return time.Time{}, false
}

func (v *Vehicle) Number(name string) (float64, bool) {
	switch name {
	case "mileage":
		return v.Mileage, true
	case "year":
		return float64(v.Year), v.Year > 0
	}
	return 0, false
}

// Trip is a single ride.
type Trip struct {
	ID          string   `json:"id"`
	Driver      string   `json:"driver"`
	Vehicle     string   `json:"vehicle"`
	Pickup      string   `json:"pickup,omitempty"`
	Dropoff     string   `json:"dropoff,omitempty"`
	DistanceKm  float64  `json:"distanceKm,omitempty"`
	DurationMin float64  `json:"durationMin,omitempty"`
	Fare        float64  `json:"fare"`
	Commission  float64  `json:"commission"`
	Status      string   `json:"status"` // completed, ongoing, cancelled
	TripDate    *Date    `json:"date,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}

func (t *Trip) EntityID() string    { return t.ID }
func (t *Trip) Kind() EntityType    { return EntityTypeTrip }
func (t *Trip) DisplayName() string { return t.ID }

func (t *Trip) Field(name string) (string, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "driver":
		return t.Driver, true
	case "vehicle":
		return t.Vehicle, true
	case "pickup":
		return t.Pickup, true
	case "dropoff":
		return t.Dropoff, true
	case "distanceKm":
		return formatNumber(t.DistanceKm), true
	case "durationMin":
		return formatNumber(t.DurationMin), true
	case "fare":
		return formatNumber(t.Fare), true
	case "commission":
		return formatNumber(t.Commission), true
	case "status":
		return t.Status, true
	case "date":
		return dateField(t.TripDate)
	case "rating":
		if t.Rating == nil {
			return "", false
		}
		return formatNumber(*t.Rating), true
	}
	return "", false
}

func (t *Trip) Date(name string) (time.Time, bool) {
	if name == "date" {
		return dateValue(t.TripDate)
	}
	return time.Time{}, false
}

func (t *Trip) Number(name string) (float64, bool) {
	switch name {
	case "distanceKm":
		return t.DistanceKm, true
	case "durationMin":
		return t.DurationMin, true
	case "fare":
		return t.Fare, true
	case "commission":
		return t.Commission, true
	case "rating":
		if t.Rating == nil {
			return 0, false
		}
		return *t.Rating, true
	}
	return 0, false
}

// Payout is a driver payout request.
type Payout struct {
	ID            string  `json:"id"`
	DriverID      string  `json:"driverId"`
	DriverName    string  `json:"driverName"`
	Amount        float64 `json:"amount"`
	Trips         int     `json:"trips"`
	Period        string  `json:"period,omitempty"`
	Status        string  `json:"status"` // paid, pending, processing, rejected
	RequestDate   *Date   `json:"requestDate,omitempty"`
	PaidDate      *Date   `json:"paidDate,omitempty"`
	BankAccount   string  `json:"bankAccount,omitempty"`
	TransactionID string  `json:"transactionId,omitempty"`
}

func (p *Payout) EntityID() string    { return p.ID }
func (p *Payout) Kind() EntityType    { return EntityTypePayout }
func (p *Payout) DisplayName() string { return firstNonEmpty(p.DriverName, p.ID) }

func (p *Payout) Field(name string) (string, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "driverId":
		return p.DriverID, true
	case "driverName":
		return p.DriverName, true
	case "amount":
		return formatNumber(p.Amount), true
	case "trips":
		return strconv.Itoa(p.Trips), true
	case "period":
		return p.Period, true
	case "status":
		return p.Status, true
	case "requestDate":
		return dateField(p.RequestDate)
	case "paidDate":
		return dateField(p.PaidDate)
	case "bankAccount":
		return p.BankAccount, true
	case "transactionId":
		return p.TransactionID, p.TransactionID != ""
	}
	return "", false
}

func (p *Payout) Date(name string) (time.Time, bool) {
	switch name {
	case "requestDate":
		return dateValue(p.RequestDate)
	case "paidDate":
		return dateValue(p.PaidDate)
	}
	return time.Time{}, false
}

func (p *Payout) Number(name string) (float64, bool) {
	switch name {
	case "amount":
		return p.Amount, true
	case "trips":
		return float64(p.Trips), true
	}
	return 0, false
}

// NewEntity returns an empty entity of the given type, ready for decoding.
func NewEntity(t EntityType) (Entity, error) {
	switch t {
	case EntityTypeDriver:
		return &Driver{}, nil
	case EntityTypeVehicle:
		return &Vehicle{}, nil
	case EntityTypeTrip:
		return &Trip{}, nil
	case EntityTypePayout:
		return &Payout{}, nil
	}
	return nil, &ValidationError{Field: "entityType", Reason: "unknown entity type " + strconv.Quote(string(t))}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
