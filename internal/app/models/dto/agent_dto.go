package dto

import (
	"github.com/edvios/backend/internal/app/models"
)

// CreateAgentRequest is the agent registration form
type CreateAgentRequest struct {
	LegalName                        string   `json:"legalName" binding:"required,max=255"`
	TradingName                      *string  `json:"tradingName"`
	AgentName                        string   `json:"agentName" binding:"required,max=255"`
	CalendlyLink                     *string  `json:"calendlyLink" binding:"omitempty,url"`
	CountryOfRegistration            string   `json:"countryOfRegistration" binding:"required"`
	YearEstablished                  *int     `json:"yearEstablished" binding:"omitempty,min=1800,max=2100"`
	WebsiteURL                       *string  `json:"websiteUrl" binding:"omitempty,url"`
	OfficeAddress                    string   `json:"officeAddress" binding:"required"`
	ContactPersonName                string   `json:"contactPersonName" binding:"required"`
	Designation                      *string  `json:"designation"`
	OfficialEmail                    string   `json:"officialEmail" binding:"required,email"`
	PhoneNumber                      string   `json:"phoneNumber" binding:"required"`
	BusinessRegistrationNumber       string   `json:"businessRegistrationNumber" binding:"required"`
	BusinessRegistrationCertificate  *string  `json:"businessRegistrationCertificate" binding:"omitempty,url"`
	OfficeAddressProof               *string  `json:"officeAddressProof" binding:"omitempty,url"`
	RegisteredWithEducationCouncils  bool     `json:"registeredWithEducationCouncils"`
	WorkingWithUKInstitutions        bool     `json:"workingWithUkInstitutions"`
	WorkingWithCanadaInstitutions    bool     `json:"workingWithCanadaInstitutions"`
	WorkingWithAustraliaInstitutions bool     `json:"workingWithAustraliaInstitutions"`
	PrimaryStudentMarkets            []string `json:"primaryStudentMarkets"`
	AverageStudentsPerYear           *int     `json:"averageStudentsPerYearLast2Years" binding:"omitempty,min=0"`
	MainDestinations                 []string `json:"mainDestinations"`
	TypicalStudentProfileStrength    *string  `json:"typicalStudentProfileStrength"`
	InHouseVisaSupport               bool     `json:"inHouseVisaSupport"`
	NumberOfCounsellors              int      `json:"numberOfCounsellors" binding:"omitempty,min=1"`
	ServicesProvided                 []string `json:"servicesProvided"`
	ReasonToUsePlatform              *string  `json:"reasonToUseEdvios"`
	InterestedFeatures               []string `json:"interestedFeatures"`
	Notes                            *string  `json:"notes"`
}

// ToModel maps the form onto a new profile; tier stays at its default
func (r *CreateAgentRequest) ToModel() *models.Agent {
	agent := &models.Agent{
		LegalName:                        r.LegalName,
		TradingName:                      r.TradingName,
		AgentName:                        r.AgentName,
		CalendlyLink:                     r.CalendlyLink,
		CountryOfRegistration:            r.CountryOfRegistration,
		YearEstablished:                  r.YearEstablished,
		WebsiteURL:                       r.WebsiteURL,
		OfficeAddress:                    r.OfficeAddress,
		ContactPersonName:                r.ContactPersonName,
		Designation:                      r.Designation,
		OfficialEmail:                    r.OfficialEmail,
		PhoneNumber:                      r.PhoneNumber,
		BusinessRegistrationNumber:       r.BusinessRegistrationNumber,
		BusinessRegistrationCertificate:  r.BusinessRegistrationCertificate,
		OfficeAddressProof:               r.OfficeAddressProof,
		RegisteredWithEducationCouncils:  r.RegisteredWithEducationCouncils,
		WorkingWithUKInstitutions:        r.WorkingWithUKInstitutions,
		WorkingWithCanadaInstitutions:    r.WorkingWithCanadaInstitutions,
		WorkingWithAustraliaInstitutions: r.WorkingWithAustraliaInstitutions,
		PrimaryStudentMarkets:            r.PrimaryStudentMarkets,
		AverageStudentsPerYear:           r.AverageStudentsPerYear,
		MainDestinations:                 r.MainDestinations,
		TypicalStudentProfileStrength:    r.TypicalStudentProfileStrength,
		InHouseVisaSupport:               r.InHouseVisaSupport,
		NumberOfCounsellors:              r.NumberOfCounsellors,
		ServicesProvided:                 r.ServicesProvided,
		ReasonToUsePlatform:              r.ReasonToUsePlatform,
		InterestedFeatures:               r.InterestedFeatures,
		Notes:                            r.Notes,
	}
	agent.ApplyDefaults()
	return agent
}

// UpdateAgentRequest patches an agent's own profile. Nil fields are left unchanged.
type UpdateAgentRequest struct {
	LegalName                        *string   `json:"legalName" binding:"omitempty,max=255"`
	TradingName                      *string   `json:"tradingName"`
	AgentName                        *string   `json:"agentName" binding:"omitempty,max=255"`
	CalendlyLink                     *string   `json:"calendlyLink" binding:"omitempty,url"`
	CountryOfRegistration            *string   `json:"countryOfRegistration"`
	YearEstablished                  *int      `json:"yearEstablished" binding:"omitempty,min=1800,max=2100"`
	WebsiteURL                       *string   `json:"websiteUrl" binding:"omitempty,url"`
	OfficeAddress                    *string   `json:"officeAddress"`
	ContactPersonName                *string   `json:"contactPersonName"`
	Designation                      *string   `json:"designation"`
	OfficialEmail                    *string   `json:"officialEmail" binding:"omitempty,email"`
	PhoneNumber                      *string   `json:"phoneNumber"`
	BusinessRegistrationNumber       *string   `json:"businessRegistrationNumber"`
	BusinessRegistrationCertificate  *string   `json:"businessRegistrationCertificate" binding:"omitempty,url"`
	OfficeAddressProof               *string   `json:"officeAddressProof" binding:"omitempty,url"`
	RegisteredWithEducationCouncils  *bool     `json:"registeredWithEducationCouncils"`
	WorkingWithUKInstitutions        *bool     `json:"workingWithUkInstitutions"`
	WorkingWithCanadaInstitutions    *bool     `json:"workingWithCanadaInstitutions"`
	WorkingWithAustraliaInstitutions *bool     `json:"workingWithAustraliaInstitutions"`
	PrimaryStudentMarkets            *[]string `json:"primaryStudentMarkets"`
	AverageStudentsPerYear           *int      `json:"averageStudentsPerYearLast2Years" binding:"omitempty,min=0"`
	MainDestinations                 *[]string `json:"mainDestinations"`
	TypicalStudentProfileStrength    *string   `json:"typicalStudentProfileStrength"`
	InHouseVisaSupport               *bool     `json:"inHouseVisaSupport"`
	NumberOfCounsellors              *int      `json:"numberOfCounsellors" binding:"omitempty,min=1"`
	ServicesProvided                 *[]string `json:"servicesProvided"`
	ReasonToUsePlatform              *string   `json:"reasonToUseEdvios"`
	InterestedFeatures               *[]string `json:"interestedFeatures"`
	Notes                            *string   `json:"notes"`
}

// Apply copies the set fields onto agent
func (r *UpdateAgentRequest) Apply(agent *models.Agent) {
	setString(&agent.LegalName, r.LegalName)
	setOptional(&agent.TradingName, r.TradingName)
	setString(&agent.AgentName, r.AgentName)
	setOptional(&agent.CalendlyLink, r.CalendlyLink)
	setString(&agent.CountryOfRegistration, r.CountryOfRegistration)
	if r.YearEstablished != nil {
		agent.YearEstablished = r.YearEstablished
	}
	setOptional(&agent.WebsiteURL, r.WebsiteURL)
	setString(&agent.OfficeAddress, r.OfficeAddress)
	setString(&agent.ContactPersonName, r.ContactPersonName)
	setOptional(&agent.Designation, r.Designation)
	setString(&agent.OfficialEmail, r.OfficialEmail)
	setString(&agent.PhoneNumber, r.PhoneNumber)
	setString(&agent.BusinessRegistrationNumber, r.BusinessRegistrationNumber)
	setOptional(&agent.BusinessRegistrationCertificate, r.BusinessRegistrationCertificate)
	setOptional(&agent.OfficeAddressProof, r.OfficeAddressProof)
	setBool(&agent.RegisteredWithEducationCouncils, r.RegisteredWithEducationCouncils)
	setBool(&agent.WorkingWithUKInstitutions, r.WorkingWithUKInstitutions)
	setBool(&agent.WorkingWithCanadaInstitutions, r.WorkingWithCanadaInstitutions)
	setBool(&agent.WorkingWithAustraliaInstitutions, r.WorkingWithAustraliaInstitutions)
	setStrings(&agent.PrimaryStudentMarkets, r.PrimaryStudentMarkets)
	if r.AverageStudentsPerYear != nil {
		agent.AverageStudentsPerYear = r.AverageStudentsPerYear
	}
	setStrings(&agent.MainDestinations, r.MainDestinations)
	setOptional(&agent.TypicalStudentProfileStrength, r.TypicalStudentProfileStrength)
	setBool(&agent.InHouseVisaSupport, r.InHouseVisaSupport)
	if r.NumberOfCounsellors != nil {
		agent.NumberOfCounsellors = *r.NumberOfCounsellors
	}
	setStrings(&agent.ServicesProvided, r.ServicesProvided)
	setOptional(&agent.ReasonToUsePlatform, r.ReasonToUsePlatform)
	setStrings(&agent.InterestedFeatures, r.InterestedFeatures)
	setOptional(&agent.Notes, r.Notes)
}

// AgentListQuery is the admin agent listing query
type AgentListQuery struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Size   int    `form:"size,default=10" binding:"min=1,max=100"`
	Search string `form:"search"`
	Filter string `form:"filter" binding:"omitempty,oneof=ALL AGENT PENDING_AGENT all agent pending_agent"`
}

// AssignmentListQuery is the admin ledger listing query
type AssignmentListQuery struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Size   int    `form:"size,default=10" binding:"min=1,max=100"`
	Search string `form:"search"`
	Filter string `form:"filter" binding:"omitempty,oneof=ALL AGENT PENDING_AGENT SELECTED_AGENT"`
}

// CalendlyLinkResponse carries an agent's booking link
type CalendlyLinkResponse struct {
	AgentID      string  `json:"agentId"`
	CalendlyLink *string `json:"calendlyLink"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setOptional(dst **string, src *string) {
	if src != nil {
		value := *src
		*dst = &value
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setStrings(dst *[]string, src *[]string) {
	if src != nil {
		*dst = append([]string{}, (*src)...)
	}
}

// ChangeAssignmentRequest repoints a ledger row to another agent
type ChangeAssignmentRequest struct {
	AgentID string `json:"agentId" binding:"required"`
}
