package models

import "gorm.io/gorm"

// FoodAnalysis is one recognized photo and the nutrition attached to it.
// The image itself is never stored; ImageSHA256 identifies repeats.
type FoodAnalysis struct {
	gorm.Model
	FoodName    string  `gorm:"type:varchar(255);not null;index" json:"food_name"`
	ClassIndex  int     `json:"class_index"`
	Confidence  float64 `json:"confidence"`
	Calories    int     `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatsG       float64 `json:"fats_g"`
	Source      string  `gorm:"type:varchar(32)" json:"source"`
	Classifier  string  `gorm:"type:varchar(32)" json:"classifier"`
	ImageSHA256 string  `gorm:"type:char(64);index" json:"image_sha256"`
	Subject     string  `gorm:"type:varchar(255);index" json:"subject,omitempty"`
	RequestID   string  `gorm:"type:varchar(64)" json:"request_id,omitempty"`
}
