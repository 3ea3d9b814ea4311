// Package domain holds the address book entities.
package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidAddress indicates a saved address is missing required fields.
var ErrInvalidAddress = errors.New("address is missing required fields")

// SavedAddress is a shipping address remembered for a shopper. Addresses are
// written after successful order placement and offered back as prefill
// candidates on later checkouts.
type SavedAddress struct {
	ID           int64
	OwnerID      string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	Region       string
	PostalCode   string
	Country      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Normalize trims surrounding whitespace on every field.
func (a *SavedAddress) Normalize() {
	a.OwnerID = strings.TrimSpace(a.OwnerID)
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	a.AddressLine2 = strings.TrimSpace(a.AddressLine2)
	a.City = strings.TrimSpace(a.City)
	a.Region = strings.TrimSpace(a.Region)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
}

// Validate checks the fields a prefill candidate must carry.
func (a SavedAddress) Validate() error {
	if a.OwnerID == "" || a.FirstName == "" || a.LastName == "" ||
		a.AddressLine1 == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return ErrInvalidAddress
	}
	return nil
}

// Fingerprint is the case-insensitive identity used to deduplicate saves.
// Two addresses with the same fingerprint are the same physical address.
func (a SavedAddress) Fingerprint() string {
	parts := []string{
		a.FirstName, a.LastName,
		a.AddressLine1, a.AddressLine2,
		a.City, a.Region, a.PostalCode, a.Country,
	}
	return strings.ToLower(strings.Join(parts, "|"))
}
