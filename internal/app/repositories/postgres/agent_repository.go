package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
)

var agentColumns = []string{
	"id", "legal_name", "trading_name", "agent_name", "calendly_link", "country_of_registration",
	"year_established", "website_url", "office_address", "contact_person_name", "designation",
	"official_email", "phone_number", "business_registration_number", "business_registration_certificate",
	"office_address_proof", "registered_with_education_councils", "working_with_uk_institutions",
	"working_with_canada_institutions", "working_with_australia_institutions", "primary_student_markets",
	"average_students_per_year", "main_destinations", "typical_student_profile_strength",
	"in_house_visa_support", "number_of_counsellors", "services_provided", "reason_to_use_platform",
	"interested_features", "agent_tier", "notes", "created_at", "updated_at",
}

func agentValues(a *models.Agent) []any {
	return []any{
		a.ID, a.LegalName, a.TradingName, a.AgentName, a.CalendlyLink, a.CountryOfRegistration,
		a.YearEstablished, a.WebsiteURL, a.OfficeAddress, a.ContactPersonName, a.Designation,
		a.OfficialEmail, a.PhoneNumber, a.BusinessRegistrationNumber, a.BusinessRegistrationCertificate,
		a.OfficeAddressProof, a.RegisteredWithEducationCouncils, a.WorkingWithUKInstitutions,
		a.WorkingWithCanadaInstitutions, a.WorkingWithAustraliaInstitutions, a.PrimaryStudentMarkets,
		a.AverageStudentsPerYear, a.MainDestinations, a.TypicalStudentProfileStrength,
		a.InHouseVisaSupport, a.NumberOfCounsellors, a.ServicesProvided, a.ReasonToUsePlatform,
		a.InterestedFeatures, a.AgentTier, a.Notes, a.CreatedAt, a.UpdatedAt,
	}
}

// AgentRepository handles agent profile database operations
type AgentRepository struct {
	store
}

// NewAgentRepository creates a new AgentRepository
func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{store: newStore(pool)}
}

// Create inserts a profile; a second profile for the same user is a conflict
func (r *AgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	now := time.Now().UTC()
	agent.CreatedAt, agent.UpdatedAt = now, now

	query := r.sb.Insert("agents").Columns(agentColumns...).Values(agentValues(agent)...)
	return exec(ctx, r.store, query, "agent profile", false)
}

// GetByID retrieves a profile by its user id
func (r *AgentRepository) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	query := r.sb.Select(agentColumns...).From("agents").Where(squirrel.Eq{"id": id})
	return selectOne[models.Agent](ctx, r.store, query, "agent")
}

// Update rewrites every mutable column of the profile
func (r *AgentRepository) Update(ctx context.Context, agent *models.Agent) error {
	agent.UpdatedAt = time.Now().UTC()

	values := agentValues(agent)
	query := r.sb.Update("agents").Where(squirrel.Eq{"id": agent.ID})
	// skip id and created_at
	for i, column := range agentColumns {
		if column == "id" || column == "created_at" {
			continue
		}
		query = query.Set(column, values[i])
	}
	return exec(ctx, r.store, query, "agent", true)
}

// LeastLoaded picks the approved agent holding the fewest chats, oldest account first on ties
func (r *AgentRepository) LeastLoaded(ctx context.Context) (*models.AgentLoad, error) {
	query := r.sb.Select("u.id AS agent_id", "u.role", "COUNT(c.id) AS chats_count").
		From("users u").
		Join("agents a ON a.id = u.id").
		LeftJoin("chats c ON c.agent_id = u.id").
		Where(squirrel.Eq{"u.role": rolesToStrings([]models.RoleType{models.RoleAgent, models.RoleSelectedAgent})}).
		GroupBy("u.id", "u.role", "u.created_at").
		OrderBy("chats_count ASC", "u.created_at ASC", "u.id").
		Limit(1)
	return selectOne[models.AgentLoad](ctx, r.store, query, "available agent")
}

// SettingsRepository handles the single app_settings row
type SettingsRepository struct {
	store
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{store: newStore(pool)}
}

func (r *SettingsRepository) selectSettings() squirrel.SelectBuilder {
	return r.sb.Select("selected_agent_id", "updated_at").From("app_settings").Where(squirrel.Eq{"id": 1})
}

// Get reads the settings row
func (r *SettingsRepository) Get(ctx context.Context) (*models.AppSettings, error) {
	return selectOne[models.AppSettings](ctx, r.store, r.selectSettings(), "settings")
}

// GetForUpdate reads the settings row with a row lock
func (r *SettingsRepository) GetForUpdate(ctx context.Context) (*models.AppSettings, error) {
	return selectOne[models.AppSettings](ctx, r.store, r.selectSettings().Suffix("FOR UPDATE"), "settings")
}

// SetSelectedAgent points the settings row at agentID, or clears it when nil
func (r *SettingsRepository) SetSelectedAgent(ctx context.Context, agentID *string) error {
	query := r.sb.Update("app_settings").
		Set("selected_agent_id", agentID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": 1})
	return exec(ctx, r.store, query, "settings", true)
}
