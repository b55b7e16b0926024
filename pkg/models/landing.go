package models

// CareerForm is a landing-page career application submission
type CareerForm struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"index;not null" json:"email"`
	Message   string `json:"message"`
	ResumeURL string `json:"resume_url,omitempty"`
}

// CareerFormRequest is the multipart landing-page submission payload
type CareerFormRequest struct {
	Name    string `form:"name" validate:"required,min=2"`
	Email   string `form:"email" validate:"required,email"`
	Message string `form:"message"`
}
