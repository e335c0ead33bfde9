package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edvios/backend/internal/app/models"
)

const dateLayout = "2006-01-02"

// CreateStudentRequest is the student onboarding profile
type CreateStudentRequest struct {
	DateOfBirth            string           `json:"dob" binding:"required,datetime=2006-01-02"`
	Gender                 *string          `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	Nationality            string           `json:"nationality" binding:"required"`
	PassportNumber         string           `json:"passportNumber" binding:"required"`
	PassportExpiryDate     string           `json:"passportExpiryDate" binding:"required,datetime=2006-01-02"`
	CountryOfResidence     string           `json:"countryOfResidence" binding:"required"`
	Email                  string           `json:"email" binding:"required,email"`
	Phone                  string           `json:"phone" binding:"required"`
	EmergencyContact       string           `json:"emergencyContact" binding:"required"`
	HighestQualification   string           `json:"highestQualification" binding:"required"`
	YearOfCompletion       *int             `json:"yearOfCompletion" binding:"omitempty,min=1950,max=2100"`
	InstitutionName        string           `json:"institutionName" binding:"required"`
	MediumOfInstruction    *string          `json:"mediumOfInstruction"`
	GradesSummary          *string          `json:"gradesSummary"`
	AcademicCertificates   []string         `json:"academicCertificates"`
	EnglishTestTaken       *string          `json:"englishTestTaken" binding:"omitempty,oneof=IELTS TOEFL PTE DUOLINGO NONE"`
	OverallScore           *float64         `json:"overallScore" binding:"omitempty,min=0"`
	TestExpiryDate         *string          `json:"testExpiryDate" binding:"omitempty,datetime=2006-01-02"`
	IntendedIntakeMonth    *int             `json:"intendedIntakeMonth" binding:"omitempty,min=1,max=12"`
	IntendedIntakeYear     *int             `json:"intendedIntakeYear" binding:"omitempty,min=2000,max=2100"`
	PreferredCountries     []string         `json:"preferredCountries"`
	PreferredStudyLevel    *string          `json:"preferredStudyLevel" binding:"omitempty,oneof=FOUNDATION DIPLOMA UNDERGRADUATE POSTGRADUATE PHD"`
	PreferredFieldOfStudy  string           `json:"preferredFieldOfStudy" binding:"required"`
	EstimatedBudget        *decimal.Decimal `json:"estimatedBudget"`
	FundingSource          *string          `json:"fundingSource" binding:"omitempty,oneof=SELF FAMILY SCHOLARSHIP LOAN SPONSOR"`
	PreviousVisaRefusal    bool             `json:"previousVisaRefusal"`
	VisaRefusalDetails     *string          `json:"visaRefusalDetails"`
	TravelHistory          *string          `json:"travelHistory"`
	OngoingImmigrationApps *string          `json:"ongoingImmigrationApps"`
	AcademicFit            *string          `json:"academicFit"`
	VisaRiskBand           *string          `json:"visaRiskBand" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Notes                  *string          `json:"notes"`
}

// ToModel converts the request into a Student
func (r *CreateStudentRequest) ToModel() (*models.Student, error) {
	dob, err := time.Parse(dateLayout, r.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("dob: %w", err)
	}
	passportExpiry, err := time.Parse(dateLayout, r.PassportExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("passportExpiryDate: %w", err)
	}
	testExpiry, err := parseOptionalDate(r.TestExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("testExpiryDate: %w", err)
	}

	student := &models.Student{
		DateOfBirth:            dob,
		Gender:                 r.Gender,
		Nationality:            r.Nationality,
		PassportNumber:         r.PassportNumber,
		PassportExpiryDate:     passportExpiry,
		CountryOfResidence:     r.CountryOfResidence,
		Email:                  r.Email,
		Phone:                  r.Phone,
		EmergencyContact:       r.EmergencyContact,
		HighestQualification:   r.HighestQualification,
		YearOfCompletion:       r.YearOfCompletion,
		InstitutionName:        r.InstitutionName,
		MediumOfInstruction:    r.MediumOfInstruction,
		GradesSummary:          r.GradesSummary,
		AcademicCertificates:   nonNil(r.AcademicCertificates),
		EnglishTestTaken:       r.EnglishTestTaken,
		OverallScore:           r.OverallScore,
		TestExpiryDate:         testExpiry,
		IntendedIntakeMonth:    r.IntendedIntakeMonth,
		IntendedIntakeYear:     r.IntendedIntakeYear,
		PreferredCountries:     nonNil(r.PreferredCountries),
		PreferredStudyLevel:    r.PreferredStudyLevel,
		PreferredFieldOfStudy:  r.PreferredFieldOfStudy,
		EstimatedBudget:        r.EstimatedBudget,
		FundingSource:          r.FundingSource,
		PreviousVisaRefusal:    r.PreviousVisaRefusal,
		VisaRefusalDetails:     r.VisaRefusalDetails,
		TravelHistory:          r.TravelHistory,
		OngoingImmigrationApps: r.OngoingImmigrationApps,
		AcademicFit:            r.AcademicFit,
		VisaRiskBand:           r.VisaRiskBand,
		Notes:                  r.Notes,
	}
	return student, nil
}

// UpdateStudentRequest patches a student's own profile
type UpdateStudentRequest struct {
	Phone                 *string          `json:"phone"`
	EmergencyContact      *string          `json:"emergencyContact"`
	CountryOfResidence    *string          `json:"countryOfResidence"`
	PassportNumber        *string          `json:"passportNumber"`
	PassportExpiryDate    *string          `json:"passportExpiryDate" binding:"omitempty,datetime=2006-01-02"`
	EnglishTestTaken      *string          `json:"englishTestTaken" binding:"omitempty,oneof=IELTS TOEFL PTE DUOLINGO NONE"`
	OverallScore          *float64         `json:"overallScore" binding:"omitempty,min=0"`
	TestExpiryDate        *string          `json:"testExpiryDate" binding:"omitempty,datetime=2006-01-02"`
	IntendedIntakeMonth   *int             `json:"intendedIntakeMonth" binding:"omitempty,min=1,max=12"`
	IntendedIntakeYear    *int             `json:"intendedIntakeYear" binding:"omitempty,min=2000,max=2100"`
	PreferredCountries    *[]string        `json:"preferredCountries"`
	PreferredStudyLevel   *string          `json:"preferredStudyLevel" binding:"omitempty,oneof=FOUNDATION DIPLOMA UNDERGRADUATE POSTGRADUATE PHD"`
	PreferredFieldOfStudy *string          `json:"preferredFieldOfStudy"`
	EstimatedBudget       *decimal.Decimal `json:"estimatedBudget"`
	FundingSource         *string          `json:"fundingSource" binding:"omitempty,oneof=SELF FAMILY SCHOLARSHIP LOAN SPONSOR"`
	Notes                 *string          `json:"notes"`
}

// Apply copies the set fields onto student
func (r *UpdateStudentRequest) Apply(student *models.Student) error {
	setString(&student.Phone, r.Phone)
	setString(&student.EmergencyContact, r.EmergencyContact)
	setString(&student.CountryOfResidence, r.CountryOfResidence)
	setString(&student.PassportNumber, r.PassportNumber)
	if r.PassportExpiryDate != nil {
		expiry, err := time.Parse(dateLayout, *r.PassportExpiryDate)
		if err != nil {
			return fmt.Errorf("passportExpiryDate: %w", err)
		}
		student.PassportExpiryDate = expiry
	}
	setOptional(&student.EnglishTestTaken, r.EnglishTestTaken)
	if r.OverallScore != nil {
		student.OverallScore = r.OverallScore
	}
	if r.TestExpiryDate != nil {
		expiry, err := parseOptionalDate(r.TestExpiryDate)
		if err != nil {
			return fmt.Errorf("testExpiryDate: %w", err)
		}
		student.TestExpiryDate = expiry
	}
	if r.IntendedIntakeMonth != nil {
		student.IntendedIntakeMonth = r.IntendedIntakeMonth
	}
	if r.IntendedIntakeYear != nil {
		student.IntendedIntakeYear = r.IntendedIntakeYear
	}
	setStrings(&student.PreferredCountries, r.PreferredCountries)
	setOptional(&student.PreferredStudyLevel, r.PreferredStudyLevel)
	setString(&student.PreferredFieldOfStudy, r.PreferredFieldOfStudy)
	if r.EstimatedBudget != nil {
		budget := *r.EstimatedBudget
		student.EstimatedBudget = &budget
	}
	setOptional(&student.FundingSource, r.FundingSource)
	setOptional(&student.Notes, r.Notes)
	return nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
