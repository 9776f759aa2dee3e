package domain

import "strings"

// Identity is the locally known authenticated user, derived from a cached
// access token. Absent identity means anonymous browsing.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Profile is the shipping/contact record the backend stores per email.
type Profile struct {
	Email    string `json:"email"`
	FullName string `json:"nombre"`
	Phone    string `json:"telefono"`
	Address  string `json:"direccion"`
	City     string `json:"ciudad"`
	Region   string `json:"region,omitempty"`
}

// SplitName splits the stored full name on the first whitespace run into
// a given name and a surname.
func (p Profile) SplitName() (name, surname string) {
	fields := strings.Fields(p.FullName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// ShippingForm is the checkout form as submitted by the client.
type ShippingForm struct {
	Name    string `json:"nombre"`
	Surname string `json:"apellido"`
	Email   string `json:"email"`
	Phone   string `json:"telefono"`
	Address string `json:"direccion"`
	City    string `json:"ciudad"`
	Region  string `json:"region"`
}
