package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	Name        string                      `gorm:"column:name;size:200;not null"`
	Slug        string                      `gorm:"column:slug;size:220;uniqueIndex:idx_products_slug;not null"`
	Category    string                      `gorm:"column:category;size:100;index:idx_products_category"`
	Summary     string                      `gorm:"column:summary;size:500"`
	Description string                      `gorm:"column:description;type:text"`
	Specs       datatypes.JSONMap           `gorm:"column:specs"`
	Images      datatypes.JSONSlice[string] `gorm:"column:images"`
	Featured    bool                        `gorm:"column:featured;not null;default:false"`
	Active      bool                        `gorm:"column:active;not null;default:true"`
}
