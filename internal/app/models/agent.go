package models

import "time"

// AgentTier classifies agent partnerships
type AgentTier string

const (
	AgentTierBasic   AgentTier = "BASIC"
	AgentTierPremium AgentTier = "PREMIUM"
)

// Agent is the business profile attached 1:1 to an agent-track user. ID equals the user id.
type Agent struct {
	ID                               string    `json:"id" db:"id"`
	LegalName                        string    `json:"legalName" db:"legal_name"`
	TradingName                      *string   `json:"tradingName,omitempty" db:"trading_name"`
	AgentName                        string    `json:"agentName" db:"agent_name"`
	CalendlyLink                     *string   `json:"calendlyLink,omitempty" db:"calendly_link"`
	CountryOfRegistration            string    `json:"countryOfRegistration" db:"country_of_registration"`
	YearEstablished                  *int      `json:"yearEstablished,omitempty" db:"year_established"`
	WebsiteURL                       *string   `json:"websiteUrl,omitempty" db:"website_url"`
	OfficeAddress                    string    `json:"officeAddress" db:"office_address"`
	ContactPersonName                string    `json:"contactPersonName" db:"contact_person_name"`
	Designation                      *string   `json:"designation,omitempty" db:"designation"`
	OfficialEmail                    string    `json:"officialEmail" db:"official_email"`
	PhoneNumber                      string    `json:"phoneNumber" db:"phone_number"`
	BusinessRegistrationNumber       string    `json:"businessRegistrationNumber" db:"business_registration_number"`
	BusinessRegistrationCertificate  *string   `json:"businessRegistrationCertificate,omitempty" db:"business_registration_certificate"`
	OfficeAddressProof               *string   `json:"officeAddressProof,omitempty" db:"office_address_proof"`
	RegisteredWithEducationCouncils  bool      `json:"registeredWithEducationCouncils" db:"registered_with_education_councils"`
	WorkingWithUKInstitutions        bool      `json:"workingWithUkInstitutions" db:"working_with_uk_institutions"`
	WorkingWithCanadaInstitutions    bool      `json:"workingWithCanadaInstitutions" db:"working_with_canada_institutions"`
	WorkingWithAustraliaInstitutions bool      `json:"workingWithAustraliaInstitutions" db:"working_with_australia_institutions"`
	PrimaryStudentMarkets            []string  `json:"primaryStudentMarkets" db:"primary_student_markets"`
	AverageStudentsPerYear           *int      `json:"averageStudentsPerYearLast2Years,omitempty" db:"average_students_per_year"`
	MainDestinations                 []string  `json:"mainDestinations" db:"main_destinations"`
	TypicalStudentProfileStrength    *string   `json:"typicalStudentProfileStrength,omitempty" db:"typical_student_profile_strength"`
	InHouseVisaSupport               bool      `json:"inHouseVisaSupport" db:"in_house_visa_support"`
	NumberOfCounsellors              int       `json:"numberOfCounsellors" db:"number_of_counsellors"`
	ServicesProvided                 []string  `json:"servicesProvided" db:"services_provided"`
	ReasonToUsePlatform              *string   `json:"reasonToUseEdvios,omitempty" db:"reason_to_use_platform"`
	InterestedFeatures               []string  `json:"interestedFeatures" db:"interested_features"`
	AgentTier                        AgentTier `json:"agentTier" db:"agent_tier"`
	Notes                            *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt                        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt                        time.Time `json:"updatedAt" db:"updated_at"`

	User *User `json:"user,omitempty"`
}

// ApplyDefaults fills the defaults of a freshly submitted profile
func (a *Agent) ApplyDefaults() {
	if a.NumberOfCounsellors <= 0 {
		a.NumberOfCounsellors = 1
	}
	if a.AgentTier == "" {
		a.AgentTier = AgentTierBasic
	}
	if a.PrimaryStudentMarkets == nil {
		a.PrimaryStudentMarkets = []string{}
	}
	if a.MainDestinations == nil {
		a.MainDestinations = []string{}
	}
	if a.ServicesProvided == nil {
		a.ServicesProvided = []string{}
	}
	if a.InterestedFeatures == nil {
		a.InterestedFeatures = []string{}
	}
}

// AgentListItem is an agent-track user with its optional profile
type AgentListItem struct {
	User
	Agent *Agent `json:"agent,omitempty"`
}

// AgentLoad is an approved agent with the number of chats it holds
type AgentLoad struct {
	AgentID    string   `db:"agent_id"`
	Role       RoleType `db:"role"`
	ChatsCount int64    `db:"chats_count"`
}

// DashboardStats aggregates admin dashboard counters
type DashboardStats struct {
	TotalUsers           int64                       `json:"totalUsers"`
	TotalStudents        int64                       `json:"totalStudents"`
	TotalAgents          int64                       `json:"totalAgents"`
	PendingAgents        int64                       `json:"pendingAgents"`
	TotalApplications    int64                       `json:"totalApplications"`
	ApplicationsByStatus map[ApplicationStatus]int64 `json:"applicationsByStatus"`
	TotalChats           int64                       `json:"totalChats"`
	SelectedAgentID      *string                     `json:"selectedAgentId,omitempty"`
}
