package domain

import (
	productDomain "github.com/ridloal/storefront-dashboard/internal/product/domain"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is a mutation confirmed by the commerce API.
type Event struct {
	Type      EventType             `json:"type"`
	ProductID productDomain.ID      `json:"product_id"`
	Product   productDomain.Product `json:"product"`
}

func Created(p productDomain.Product) Event {
	return Event{Type: EventCreated, ProductID: p.ID, Product: p}
}

func Updated(p productDomain.Product) Event {
	return Event{Type: EventUpdated, ProductID: p.ID, Product: p}
}

func Deleted(id productDomain.ID) Event {
	return Event{Type: EventDeleted, ProductID: id}
}
