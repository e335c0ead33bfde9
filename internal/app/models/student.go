package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is the academic and visa profile attached 1:1 to a student user. ID equals the user id.
type Student struct {
	ID                     string           `json:"id" db:"id"`
	DateOfBirth            time.Time        `json:"dob" db:"dob"`
	Gender                 *string          `json:"gender,omitempty" db:"gender"`
	Nationality            string           `json:"nationality" db:"nationality"`
	PassportNumber         string           `json:"passportNumber" db:"passport_number"`
	PassportExpiryDate     time.Time        `json:"passportExpiryDate" db:"passport_expiry_date"`
	CountryOfResidence     string           `json:"countryOfResidence" db:"country_of_residence"`
	Email                  string           `json:"email" db:"email"`
	Phone                  string           `json:"phone" db:"phone"`
	EmergencyContact       string           `json:"emergencyContact" db:"emergency_contact"`
	HighestQualification   string           `json:"highestQualification" db:"highest_qualification"`
	YearOfCompletion       *int             `json:"yearOfCompletion,omitempty" db:"year_of_completion"`
	InstitutionName        string           `json:"institutionName" db:"institution_name"`
	MediumOfInstruction    *string          `json:"mediumOfInstruction,omitempty" db:"medium_of_instruction"`
	GradesSummary          *string          `json:"gradesSummary,omitempty" db:"grades_summary"`
	AcademicCertificates   []string         `json:"academicCertificates" db:"academic_certificates"`
	EnglishTestTaken       *string          `json:"englishTestTaken,omitempty" db:"english_test_taken"`
	OverallScore           *float64         `json:"overallScore,omitempty" db:"overall_score"`
	TestExpiryDate         *time.Time       `json:"testExpiryDate,omitempty" db:"test_expiry_date"`
	IntendedIntakeMonth    *int             `json:"intendedIntakeMonth,omitempty" db:"intended_intake_month"`
	IntendedIntakeYear     *int             `json:"intendedIntakeYear,omitempty" db:"intended_intake_year"`
	PreferredCountries     []string         `json:"preferredCountries" db:"preferred_countries"`
	PreferredStudyLevel    *string          `json:"preferredStudyLevel,omitempty" db:"preferred_study_level"`
	PreferredFieldOfStudy  string           `json:"preferredFieldOfStudy" db:"preferred_field_of_study"`
	EstimatedBudget        *decimal.Decimal `json:"estimatedBudget,omitempty" db:"estimated_budget"`
	FundingSource          *string          `json:"fundingSource,omitempty" db:"funding_source"`
	PreviousVisaRefusal    bool             `json:"previousVisaRefusal" db:"previous_visa_refusal"`
	VisaRefusalDetails     *string          `json:"visaRefusalDetails,omitempty" db:"visa_refusal_details"`
	TravelHistory          *string          `json:"travelHistory,omitempty" db:"travel_history"`
	OngoingImmigrationApps *string          `json:"ongoingImmigrationApps,omitempty" db:"ongoing_immigration_apps"`
	AcademicFit            *string          `json:"academicFit,omitempty" db:"academic_fit"`
	VisaRiskBand           *string          `json:"visaRiskBand,omitempty" db:"visa_risk_band"`
	Notes                  *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt              time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time        `json:"updatedAt" db:"updated_at"`

	User       *User            `json:"user,omitempty"`
	Assignment *AgentAssignment `json:"assignment,omitempty"`
}
