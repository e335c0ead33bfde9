package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edvios/backend/internal/app/models"
)

// InstitutionRequest creates or replaces an institution
type InstitutionRequest struct {
	Name                  string                 `json:"name" binding:"required,max=255"`
	Type                  models.InstituteType   `json:"type" binding:"required,oneof=UNIVERSITY COLLEGE SCHOOL INSTITUTE"`
	Country               string                 `json:"country" binding:"required"`
	City                  string                 `json:"city" binding:"required"`
	Ranking               int                    `json:"ranking" binding:"min=0"`
	EstablishedYear       int                    `json:"establishedYear" binding:"omitempty,min=1000,max=2100"`
	TotalStudents         int                    `json:"totalStudents" binding:"min=0"`
	InternationalStudents int                    `json:"internationalStudents" binding:"min=0"`
	TuitionRange          string                 `json:"tuitionRange"`
	Status                models.InstituteStatus `json:"status" binding:"required,oneof=ACTIVE PENDING INACTIVE"`
	Partnership           models.PartnershipType `json:"partnership" binding:"required,oneof=PREMIUM STANDARD BASIC"`
	ContactEmail          string                 `json:"contactEmail" binding:"required,email"`
	Website               string                 `json:"website" binding:"required,url"`
	Logo                  *string                `json:"logo" binding:"omitempty,url"`
	Description           string                 `json:"description"`
	Specialties           []string               `json:"specialties"`
	Accreditations        []string               `json:"accreditations"`
}

// ToModel converts the request into an Institution
func (r *InstitutionRequest) ToModel() *models.Institution {
	return &models.Institution{
		Name:                  r.Name,
		Type:                  r.Type,
		Country:               r.Country,
		City:                  r.City,
		Ranking:               r.Ranking,
		EstablishedYear:       r.EstablishedYear,
		TotalStudents:         r.TotalStudents,
		InternationalStudents: r.InternationalStudents,
		TuitionRange:          r.TuitionRange,
		Status:                r.Status,
		Partnership:           r.Partnership,
		ContactEmail:          r.ContactEmail,
		Website:               r.Website,
		Logo:                  r.Logo,
		Description:           r.Description,
		Specialties:           nonNil(r.Specialties),
		Accreditations:        nonNil(r.Accreditations),
	}
}

// InstitutionListQuery is the typed institution filter
type InstitutionListQuery struct {
	Page    int    `form:"page,default=1" binding:"min=1"`
	Size    int    `form:"size,default=10" binding:"min=1,max=100"`
	Country string `form:"country"`
	Name    string `form:"name"`
	Status  string `form:"status" binding:"omitempty,oneof=ACTIVE PENDING INACTIVE"`
	Type    string `form:"type" binding:"omitempty,oneof=UNIVERSITY COLLEGE SCHOOL INSTITUTE"`
}

// ProgramRequest creates or replaces a program
type ProgramRequest struct {
	Title               string          `json:"title" binding:"required,max=255"`
	Level               string          `json:"level" binding:"required"`
	IntakeID            *string         `json:"intakeId" binding:"omitempty,uuid"`
	SubjectID           *string         `json:"subjectId" binding:"omitempty,uuid"`
	InstitutionID       string          `json:"institutionId" binding:"required,uuid"`
	Duration            string          `json:"duration" binding:"required"`
	TuitionFee          decimal.Decimal `json:"tuitionFee"`
	ApplicationFee      decimal.Decimal `json:"applicationFee"`
	EnglishTestScore    string          `json:"englishTestScore"`
	Scholarship         bool            `json:"scholarship"`
	EnglishWaiver       bool            `json:"englishWaiver"`
	ApplicationDeadline *time.Time      `json:"applicationDeadline"`
	UCASCode            *string         `json:"ucasCode"`
	PopularityRank      int             `json:"popularityRank" binding:"min=0"`
}

// ToModel converts the request into a Program
func (r *ProgramRequest) ToModel() *models.Program {
	return &models.Program{
		Title:               r.Title,
		Level:               r.Level,
		IntakeID:            r.IntakeID,
		SubjectID:           r.SubjectID,
		InstitutionID:       r.InstitutionID,
		Duration:            r.Duration,
		TuitionFee:          r.TuitionFee,
		ApplicationFee:      r.ApplicationFee,
		EnglishTestScore:    r.EnglishTestScore,
		Scholarship:         r.Scholarship,
		EnglishWaiver:       r.EnglishWaiver,
		ApplicationDeadline: r.ApplicationDeadline,
		UCASCode:            r.UCASCode,
		PopularityRank:      r.PopularityRank,
	}
}

// ProgramListQuery is the typed program filter
type ProgramListQuery struct {
	Page                 int    `form:"page,default=1" binding:"min=1"`
	Size                 int    `form:"size,default=10" binding:"min=1,max=100"`
	Search               string `form:"search"`
	InstitutionID        string `form:"institutionId" binding:"omitempty,uuid"`
	Country              string `form:"country"`
	Level                string `form:"level"`
	IntakeID             string `form:"intake" binding:"omitempty,uuid"`
	SubjectID            string `form:"subjectArea" binding:"omitempty,uuid"`
	ScholarshipAvailable *bool  `form:"scholarshipAvailable"`
	EnglishWaiver        *bool  `form:"englishWaiver"`
}

// NamedRequest creates an intake or a subject
type NamedRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}
