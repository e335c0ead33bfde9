package dto

import "github.com/edvios/backend/internal/app/models"

// CreateApplicationRequest starts an application to a program
type CreateApplicationRequest struct {
	ProgramID         string  `json:"programId" binding:"required,uuid"`
	PreferredIntakeID *string `json:"preferredIntakeId" binding:"omitempty,uuid"`
	AcademicYear      string  `json:"academicYear" binding:"required,max=20"`
	AdditionalNotes   *string `json:"additionalNotes" binding:"omitempty,max=2000"`
}

// UpdateApplicationStatusRequest moves an application through its lifecycle
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required,appstatus"`
}

// ApplicationListQuery filters the admin application listing
type ApplicationListQuery struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Size   int    `form:"size,default=10" binding:"min=1,max=100"`
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,appstatus"`
}
