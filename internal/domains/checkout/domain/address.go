package domain

// Address is the backend address shape. The street is split across two
// numbered lines, unlike the form input.
type Address struct {
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
}

// Complete reports whether every field the address validator requires is set.
func (a Address) Complete() bool {
	return a.FirstName != "" &&
		a.LastName != "" &&
		a.Email != "" &&
		a.Phone != "" &&
		a.AddressLine1 != "" &&
		a.City != "" &&
		a.Region != "" &&
		a.Country != ""
}

// SavedAddress is a remembered address together with the handle the address
// book assigned it; the handle is what a forget request names.
type SavedAddress struct {
	ID int64
	Address
}

// AddressForm holds raw shopper input. Its Address/Address2 fields map to
// AddressLine1/AddressLine2 on the backend shape; ToAddress and AddressToForm
// are inverses for all valid inputs.
type AddressForm struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	Address2     string
	City         string
	Region       string
	PostalCode   string
	Country      string
	SaveForReuse bool
}

// ToAddress converts form input to the backend address shape.
func (f AddressForm) ToAddress() Address {
	return Address{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		Phone:        f.Phone,
		AddressLine1: f.Address,
		AddressLine2: f.Address2,
		City:         f.City,
		Region:       f.Region,
		PostalCode:   f.PostalCode,
		Country:      f.Country,
	}
}

// AddressToForm converts a backend address back into form input.
func AddressToForm(a Address) AddressForm {
	return AddressForm{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		Phone:      a.Phone,
		Address:    a.AddressLine1,
		Address2:   a.AddressLine2,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
