// Package models defines the utility entry record and its classification.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UtilityType classifies an entry.
type UtilityType string

const (
	UtilityElectricity    UtilityType = "electricity"
	UtilityWater          UtilityType = "water"
	UtilityGas            UtilityType = "gas"
	UtilityInternet       UtilityType = "internet"
	UtilityHeat           UtilityType = "heat"
	UtilityHotWater       UtilityType = "hot_water"
	UtilityColdWater      UtilityType = "cold_water"
	UtilityPhone          UtilityType = "phone"
	UtilityHousingService UtilityType = "housing_service"
	UtilityRenovation     UtilityType = "renovation"
	UtilityLoan           UtilityType = "loan"
	UtilityInterest       UtilityType = "interest"
	UtilityInsurance      UtilityType = "insurance"
	UtilityWaste          UtilityType = "waste"
	UtilityOther          UtilityType = "other"
)

// UtilityTypes lists every valid classification, in display order.
var UtilityTypes = []UtilityType{
	UtilityElectricity, UtilityWater, UtilityGas, UtilityInternet,
	UtilityHeat, UtilityHotWater, UtilityColdWater, UtilityPhone,
	UtilityHousingService, UtilityRenovation, UtilityLoan, UtilityInterest,
	UtilityInsurance, UtilityWaste, UtilityOther,
}

// Valid reports whether t is part of the fixed enumeration.
func (t UtilityType) Valid() bool {
	for _, k := range UtilityTypes {
		if t == k {
			return true
		}
	}
	return false
}

// DateLayout is the fixed calendar-date format used for reading and
// payment dates everywhere (forms, CSV import, wire records).
const DateLayout = "2006-01-02"

// Entry is one utility reading/payment record.
//
// ID is empty for a newly created entry until either the remote store
// assigns an identifier or, while offline, a local placeholder is
// generated (see NewLocalID). CreatedAt is set on first save and never
// overwritten; UpdatedAt is refreshed on every save. Synced reports
// whether the last known state matches the remote store.
type Entry struct {
	ID          string           `json:"id"`
	Type        UtilityType      `json:"utilityType"`
	Supplier    string           `json:"supplier"`
	ReadingDate time.Time        `json:"readingDate"`
	Reading     *decimal.Decimal `json:"reading,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	Notes       string           `json:"notes,omitempty"`
	PaymentDate *time.Time       `json:"paymentDate,omitempty"`
	PaymentRef  string           `json:"paymentRef,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Synced      bool             `json:"synced"`
}
