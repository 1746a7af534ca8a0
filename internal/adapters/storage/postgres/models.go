package postgres

import (
	"time"

	"hr-portal/internal/domain/departments"
	"hr-portal/internal/domain/employees"
	"hr-portal/internal/domain/leaves"
	"hr-portal/internal/domain/recruitment"
)

// Modelos gorm de las entidades con owner. owner_admin_id = '' => sin owner todavía.

type departmentModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:varchar(200);not null"`
	Description  string    `gorm:"column:description;not null;default:''"`
	OwnerAdminID string    `gorm:"column:owner_admin_id;not null;default:'';index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (departmentModel) TableName() string {
	return "departments"
}

func departmentModelFrom(d departments.Department) departmentModel {
	return departmentModel{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		OwnerAdminID: d.OwnerAdminID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (m departmentModel) toEntity() departments.Department {
	return departments.Department{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		OwnerAdminID: m.OwnerAdminID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type employeeModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null;default:''"`
	Email        string     `gorm:"column:email;not null;uniqueIndex:employees_email_key"`
	Position     string     `gorm:"column:position;not null;default:''"`
	DepartmentID *int64     `gorm:"column:department_id;index"`
	HireDate     *time.Time `gorm:"column:hire_date;type:date"`
	Status       string     `gorm:"column:status;not null;default:'active'"`
	OwnerAdminID string     `gorm:"column:owner_admin_id;not null;default:'';index"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null"`
}

func (employeeModel) TableName() string {
	return "employees"
}

func employeeModelFrom(e employees.Employee) employeeModel {
	return employeeModel{
		ID:           e.ID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Email:        e.Email,
		Position:     e.Position,
		DepartmentID: e.DepartmentID,
		HireDate:     e.HireDate,
		Status:       string(e.Status),
		OwnerAdminID: e.OwnerAdminID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (m employeeModel) toEntity() employees.Employee {
	return employees.Employee{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Position:     m.Position,
		DepartmentID: m.DepartmentID,
		HireDate:     m.HireDate,
		Status:       employees.Status(m.Status),
		OwnerAdminID: m.OwnerAdminID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type candidateModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FullName     string    `gorm:"column:full_name;not null"`
	Email        string    `gorm:"column:email;not null;default:''"`
	Phone        string    `gorm:"column:phone;not null;default:''"`
	Notes        string    `gorm:"column:notes;not null;default:''"`
	OwnerAdminID string    `gorm:"column:owner_admin_id;not null;default:'';index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFrom(c recruitment.Candidate) candidateModel {
	return candidateModel{
		ID:           c.ID,
		FullName:     c.FullName,
		Email:        c.Email,
		Phone:        c.Phone,
		Notes:        c.Notes,
		OwnerAdminID: c.OwnerAdminID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (m candidateModel) toEntity() recruitment.Candidate {
	return recruitment.Candidate{
		ID:           m.ID,
		FullName:     m.FullName,
		Email:        m.Email,
		Phone:        m.Phone,
		Notes:        m.Notes,
		OwnerAdminID: m.OwnerAdminID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type applicationModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CandidateID  int64     `gorm:"column:candidate_id;not null;index"`
	Position     string    `gorm:"column:position;not null"`
	Status       string    `gorm:"column:status;not null;default:'submitted'"`
	Notes        string    `gorm:"column:notes;not null;default:''"`
	OwnerAdminID string    `gorm:"column:owner_admin_id;not null;default:'';index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (applicationModel) TableName() string {
	return "job_applications"
}

func applicationModelFrom(a recruitment.JobApplication) applicationModel {
	return applicationModel{
		ID:           a.ID,
		CandidateID:  a.CandidateID,
		Position:     a.Position,
		Status:       string(a.Status),
		Notes:        a.Notes,
		OwnerAdminID: a.OwnerAdminID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m applicationModel) toEntity() recruitment.JobApplication {
	return recruitment.JobApplication{
		ID:           m.ID,
		CandidateID:  m.CandidateID,
		Position:     m.Position,
		Status:       recruitment.ApplicationStatus(m.Status),
		Notes:        m.Notes,
		OwnerAdminID: m.OwnerAdminID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type leaveModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	EmployeeID   int64      `gorm:"column:employee_id;not null;index"`
	StartDate    time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate      time.Time  `gorm:"column:end_date;type:date;not null"`
	Reason       string     `gorm:"column:reason;not null;default:''"`
	Status       string     `gorm:"column:status;not null;default:'pending';index"`
	DecidedAt    *time.Time `gorm:"column:decided_at"`
	DecidedBy    string     `gorm:"column:decided_by;not null;default:''"`
	OwnerAdminID string     `gorm:"column:owner_admin_id;not null;default:'';index"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null"`
}

func (leaveModel) TableName() string {
	return "leave_requests"
}

func leaveModelFrom(l leaves.LeaveRequest) leaveModel {
	return leaveModel{
		ID:           l.ID,
		EmployeeID:   l.EmployeeID,
		StartDate:    l.StartDate,
		EndDate:      l.EndDate,
		Reason:       l.Reason,
		Status:       string(l.Status),
		DecidedAt:    l.DecidedAt,
		DecidedBy:    l.DecidedBy,
		OwnerAdminID: l.OwnerAdminID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (m leaveModel) toEntity() leaves.LeaveRequest {
	return leaves.LeaveRequest{
		ID:           m.ID,
		EmployeeID:   m.EmployeeID,
		StartDate:    m.StartDate.UTC(),
		EndDate:      m.EndDate.UTC(),
		Reason:       m.Reason,
		Status:       leaves.Status(m.Status),
		DecidedAt:    m.DecidedAt,
		DecidedBy:    m.DecidedBy,
		OwnerAdminID: m.OwnerAdminID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
