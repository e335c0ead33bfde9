package models

import "time"

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	ApplicationDraft       ApplicationStatus = "DRAFT"
	ApplicationSubmitted   ApplicationStatus = "SUBMITTED"
	ApplicationUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationAccepted    ApplicationStatus = "ACCEPTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
	ApplicationWithdrawn   ApplicationStatus = "WITHDRAWN"
)

// AllApplicationStatuses in lifecycle order
var AllApplicationStatuses = []ApplicationStatus{
	ApplicationDraft, ApplicationSubmitted, ApplicationUnderReview,
	ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn,
}

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationDraft:       {ApplicationSubmitted, ApplicationWithdrawn},
	ApplicationSubmitted:   {ApplicationUnderReview, ApplicationWithdrawn},
	ApplicationUnderReview: {ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn},
}

// Terminal reports states with no outgoing transition
func (s ApplicationStatus) Terminal() bool {
	return len(applicationTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application is a student's application to a program
type Application struct {
	ID                string            `json:"id" db:"id"`
	StudentID         string            `json:"studentId" db:"student_id"`
	ProgramID         string            `json:"programId" db:"program_id"`
	PreferredIntakeID *string           `json:"preferredIntakeId,omitempty" db:"preferred_intake_id"`
	AcademicYear      string            `json:"academicYear" db:"academic_year"`
	AdditionalNotes   *string           `json:"additionalNotes,omitempty" db:"additional_notes"`
	Status            ApplicationStatus `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`

	Program *Program `json:"program,omitempty"`
	Student *User    `json:"student,omitempty"`
}
