package models

import "gorm.io/gorm"

// Card represents one credit card and its benefit sections.
//
// swagger:model Card
type Card struct {
	// GORM will automatically add ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// the name of the card
	//
	// required: true
	Name string `json:"name" gorm:"type:text;not null"`
	// the card image url, nil when the dump had none
	ImageURL *string `json:"imageURL,omitempty" gorm:"type:text"`
	// the card detail page url, nil when the dump had none
	DetailLink *string `json:"detailLink,omitempty" gorm:"type:text"`
	// benefit sections keyed by heading, stored as a JSON object
	Sections Sections `json:"sections" gorm:"type:jsonb;serializer:json"`
}
