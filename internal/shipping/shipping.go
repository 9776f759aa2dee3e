// Package shipping holds the static region/fee table. Fees are flat per
// region and are not sourced from the backend.
package shipping

import "github.com/Mauthecat/tienda-sub000/internal/domain"

type Region struct {
	Name  string       `json:"name"`
	Zone  string       `json:"zone"`
	Price domain.Price `json:"price"`
}

var regions = []Region{
	{Name: "Arica y Parinacota", Zone: "norte", Price: 7900},
	{Name: "Tarapacá", Zone: "norte", Price: 7500},
	{Name: "Antofagasta", Zone: "norte", Price: 6900},
	{Name: "Atacama", Zone: "norte", Price: 6500},
	{Name: "Coquimbo", Zone: "norte", Price: 5900},
	{Name: "Valparaíso", Zone: "centro", Price: 4900},
	{Name: "Región Metropolitana", Zone: "centro", Price: 4300},
	{Name: "O'Higgins", Zone: "centro", Price: 4900},
	{Name: "Maule", Zone: "centro", Price: 5500},
	{Name: "Ñuble", Zone: "sur", Price: 5900},
	{Name: "Biobío", Zone: "sur", Price: 5900},
	{Name: "La Araucanía", Zone: "sur", Price: 6500},
	{Name: "Los Ríos", Zone: "sur", Price: 6900},
	{Name: "Los Lagos", Zone: "sur", Price: 6900},
	{Name: "Aysén", Zone: "austral", Price: 8900},
	{Name: "Magallanes", Zone: "austral", Price: 9900},
}

// Cost returns the flat fee for a region name, or 0 when the name is empty
// or unknown. A zero fee means "shipping not yet determined", never free
// shipping: checkout refuses to submit while the fee is zero.
func Cost(name string) domain.Price {
	for _, r := range regions {
		if r.Name == name {
			return r.Price
		}
	}
	return 0
}

// Regions returns the table for the client's region selector. Callers must
// not mutate the returned slice.
func Regions() []Region {
	return regions
}
