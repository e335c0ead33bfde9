package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstituteType string

const (
	InstituteTypeUniversity InstituteType = "UNIVERSITY"
	InstituteTypeCollege    InstituteType = "COLLEGE"
	InstituteTypeSchool     InstituteType = "SCHOOL"
	InstituteTypeInstitute  InstituteType = "INSTITUTE"
)

type InstituteStatus string

const (
	InstituteStatusActive   InstituteStatus = "ACTIVE"
	InstituteStatusPending  InstituteStatus = "PENDING"
	InstituteStatusInactive InstituteStatus = "INACTIVE"
)

type PartnershipType string

const (
	PartnershipPremium  PartnershipType = "PREMIUM"
	PartnershipStandard PartnershipType = "STANDARD"
	PartnershipBasic    PartnershipType = "BASIC"
)

// Institution is a partner university, college or school
type Institution struct {
	ID                    string          `json:"id" db:"id"`
	Name                  string          `json:"name" db:"name"`
	Type                  InstituteType   `json:"type" db:"type"`
	Country               string          `json:"country" db:"country"`
	City                  string          `json:"city" db:"city"`
	Ranking               int             `json:"ranking" db:"ranking"`
	EstablishedYear       int             `json:"establishedYear" db:"established_year"`
	TotalStudents         int             `json:"totalStudents" db:"total_students"`
	InternationalStudents int             `json:"internationalStudents" db:"international_students"`
	TuitionRange          string          `json:"tuitionRange" db:"tuition_range"`
	Status                InstituteStatus `json:"status" db:"status"`
	Partnership           PartnershipType `json:"partnership" db:"partnership"`
	ContactEmail          string          `json:"contactEmail" db:"contact_email"`
	Website               string          `json:"website" db:"website"`
	Logo                  *string         `json:"logo,omitempty" db:"logo"`
	Description           string          `json:"description" db:"description"`
	Specialties           []string        `json:"specialties" db:"specialties"`
	Accreditations        []string        `json:"accreditations" db:"accreditations"`
	ProgramsCount         int64           `json:"programsCount" db:"programs_count"`
	CreatedAt             time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time       `json:"updatedAt" db:"updated_at"`
}

// Program is a course of study offered by an institution
type Program struct {
	ID                  string          `json:"id" db:"id"`
	Title               string          `json:"title" db:"title"`
	Level               string          `json:"level" db:"level"`
	IntakeID            *string         `json:"intakeId,omitempty" db:"intake_id"`
	SubjectID           *string         `json:"subjectId,omitempty" db:"subject_id"`
	InstitutionID       string          `json:"institutionId" db:"institution_id"`
	Duration            string          `json:"duration" db:"duration"`
	TuitionFee          decimal.Decimal `json:"tuitionFee" db:"tuition_fee"`
	ApplicationFee      decimal.Decimal `json:"applicationFee" db:"application_fee"`
	EnglishTestScore    string          `json:"englishTestScore" db:"english_test_score"`
	Scholarship         bool            `json:"scholarship" db:"scholarship"`
	EnglishWaiver       bool            `json:"englishWaiver" db:"english_waiver"`
	ApplicationDeadline *time.Time      `json:"applicationDeadline,omitempty" db:"application_deadline"`
	UCASCode            *string         `json:"ucasCode,omitempty" db:"ucas_code"`
	PopularityRank      int             `json:"popularityRank" db:"popularity_rank"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`

	Institution *Institution `json:"institution,omitempty"`
	Intake      *Intake      `json:"intake,omitempty"`
	Subject     *Subject     `json:"subject,omitempty"`
}

// Intake is an admission window such as "September 2026"
type Intake struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Subject is a field of study used to classify programs
type Subject struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
