package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Column names as they appear in the header row of the personnel sheet.
const (
	ColID             = "id"
	ColParentID       = "parent_id"
	ColName           = "name"
	ColTitle          = "title"
	ColImg            = "img"
	ColOffice         = "office"
	ColLocation       = "location"
	ColBillable       = "billable"
	ColNonbillable    = "nonbillable"
	ColProjects       = "projects"
	ColProjectsCount  = "projectscount"
	ColCustomersCount = "customerscount"
	ColTrainees       = "trainees"
)

// Columns lists every column a PersonRecord is populated from, in sheet order.
var Columns = []string{
	ColID, ColParentID, ColName, ColTitle, ColImg, ColOffice, ColLocation,
	ColBillable, ColNonbillable, ColProjects, ColProjectsCount, ColCustomersCount, ColTrainees,
}

// PersonRecord is one row of personnel data. Records are immutable once loaded;
// every field is whitespace-trimmed and absent columns are empty strings.
type PersonRecord struct {
	ID             string `json:"id" validate:"required"`
	ParentID       string `json:"parent_id,omitempty"`
	Name           string `json:"name" validate:"required"`
	Title          string `json:"title,omitempty"`
	Img            string `json:"img,omitempty"`
	Office         string `json:"office,omitempty"`
	Location       string `json:"location,omitempty"`
	Billable       string `json:"billable,omitempty"`
	Nonbillable    string `json:"nonbillable,omitempty"`
	Projects       string `json:"projects,omitempty"`
	ProjectsCount  string `json:"projectscount,omitempty"`
	CustomersCount string `json:"customerscount,omitempty"`
	Trainees       string `json:"trainees,omitempty"`
}

// FromRow builds a normalized record from a column-name keyed row.
// Missing columns default to the empty string.
func FromRow(row map[string]string) PersonRecord {
	return PersonRecord{
		ID:             row[ColID],
		ParentID:       row[ColParentID],
		Name:           row[ColName],
		Title:          row[ColTitle],
		Img:            row[ColImg],
		Office:         row[ColOffice],
		Location:       row[ColLocation],
		Billable:       row[ColBillable],
		Nonbillable:    row[ColNonbillable],
		Projects:       row[ColProjects],
		ProjectsCount:  row[ColProjectsCount],
		CustomersCount: row[ColCustomersCount],
		Trainees:       row[ColTrainees],
	}.Normalize()
}

// Normalize returns a copy with surrounding whitespace trimmed from every field.
func (p PersonRecord) Normalize() PersonRecord {
	p.ID = strings.TrimSpace(p.ID)
	p.ParentID = strings.TrimSpace(p.ParentID)
	p.Name = strings.TrimSpace(p.Name)
	p.Title = strings.TrimSpace(p.Title)
	p.Img = strings.TrimSpace(p.Img)
	p.Office = strings.TrimSpace(p.Office)
	p.Location = strings.TrimSpace(p.Location)
	p.Billable = strings.TrimSpace(p.Billable)
	p.Nonbillable = strings.TrimSpace(p.Nonbillable)
	p.Projects = strings.TrimSpace(p.Projects)
	p.ProjectsCount = strings.TrimSpace(p.ProjectsCount)
	p.CustomersCount = strings.TrimSpace(p.CustomersCount)
	p.Trainees = strings.TrimSpace(p.Trainees)
	return p
}

// IsRoot reports whether the record has no parent reference.
func (p PersonRecord) IsRoot() bool {
	return p.ParentID == ""
}

// Field returns the value of the named column, or "" for unknown names.
func (p PersonRecord) Field(column string) string {
	switch column {
	case ColID:
		return p.ID
	case ColParentID:
		return p.ParentID
	case ColName:
		return p.Name
	case ColTitle:
		return p.Title
	case ColImg:
		return p.Img
	case ColOffice:
		return p.Office
	case ColLocation:
		return p.Location
	case ColBillable:
		return p.Billable
	case ColNonbillable:
		return p.Nonbillable
	case ColProjects:
		return p.Projects
	case ColProjectsCount:
		return p.ProjectsCount
	case ColCustomersCount:
		return p.CustomersCount
	case ColTrainees:
		return p.Trainees
	}
	return ""
}

// OfficeLine joins the non-empty office and location with a single space.
func (p PersonRecord) OfficeLine() string {
	parts := make([]string, 0, 2)
	if p.Office != "" {
		parts = append(parts, p.Office)
	}
	if p.Location != "" {
		parts = append(parts, p.Location)
	}
	return strings.Join(parts, " ")
}

// Validate checks that the record carries the columns the chart relies on.
// Invalid records are still rendered; callers use this for diagnostics only.
func (p *PersonRecord) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("record %q: %s is required", p.ID, strings.ToLower(verrs[0].Field()))
		}
		return fmt.Errorf("record %q: %w", p.ID, err)
	}
	return nil
}
