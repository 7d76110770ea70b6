package services

import (
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
)

// ViewerRole is how the caller relates to a sheet
type ViewerRole string

const (
	ViewerNone        ViewerRole = ""
	ViewerAdmin       ViewerRole = "admin"
	ViewerCreator     ViewerRole = "creator"
	ViewerContributor ViewerRole = "contributor"
)

type transition struct {
	from models.SplitStatus
	to   models.SplitStatus
}

// DRAFT, PUBLISHED and REVERSED have no entries.
var allowedTransitions = map[transition]struct{}{
	{models.StatusPending, models.StatusDisputed}: {},
	{models.StatusSigned, models.StatusDisputed}:  {},
	{models.StatusPending, models.StatusSigned}:   {},
	{models.StatusDisputed, models.StatusSigned}:  {},
}

// CanTransition reports whether a sheet may move from one status to another
func CanTransition(from, to models.SplitStatus) bool {
	_, ok := allowedTransitions[transition{from, to}]
	return ok
}

// Permissions is derived per request and returned with the sheet
type Permissions struct {
	ViewerRole             ViewerRole `json:"viewerRole"`
	CanEdit                bool       `json:"canEdit"`
	EditableContributorIDs []string   `json:"editableContributorIds"`
	CanEditPercentage      bool       `json:"canEditPercentage"`
	CanFinalize            bool       `json:"canFinalize"`
	CanDispute             bool       `json:"canDispute"`
	CanDelete              bool       `json:"canDelete"`
	CanNotify              bool       `json:"canNotify"`
}

// CanView reports whether the viewer may see the sheet at all
func (p Permissions) CanView() bool {
	return p.ViewerRole != ViewerNone
}

type relation struct {
	admin       bool
	creator     bool
	contributor bool
}

func relate(sheet *models.SplitSheet, viewer models.CurrentUser) relation {
	r := relation{
		admin:   viewer.IsAdmin(),
		creator: sheet.IsCreator(viewer.ID),
	}
	for i := range sheet.Contributors {
		if sheet.Contributors[i].IsLinkedTo(viewer.ID) {
			r.contributor = true
			break
		}
	}
	return r
}

func (r relation) canView() bool {
	return r.admin || r.creator || r.contributor
}

// DerivePermissions computes what the viewer may do with a sheet whose
// Contributors are loaded.
func DerivePermissions(sheet *models.SplitSheet, viewer models.CurrentUser) Permissions {
	r := relate(sheet, viewer)
	p := Permissions{EditableContributorIDs: []string{}}
	switch {
	case r.admin:
		p.ViewerRole = ViewerAdmin
	case r.creator:
		p.ViewerRole = ViewerCreator
	case r.contributor:
		p.ViewerRole = ViewerContributor
	default:
		return p
	}

	status := sheet.Status
	signed := status == models.StatusSigned

	p.CanEdit = r.admin || (r.creator && !signed)
	for i := range sheet.Contributors {
		c := &sheet.Contributors[i]
		if r.admin || (!signed && (r.creator || c.IsLinkedTo(viewer.ID))) {
			p.EditableContributorIDs = append(p.EditableContributorIDs, c.ID)
		}
	}
	p.CanEditPercentage = r.admin || (r.creator && !signed) || (r.contributor && status == models.StatusDisputed)
	p.CanFinalize = (r.admin || r.creator) &&
		CanTransition(status, models.StatusSigned) &&
		WritersComplete(sheet.Contributors)
	p.CanDispute = r.contributor && !r.creator && CanTransition(status, models.StatusDisputed)
	p.CanDelete = r.admin || (r.creator && !signed)
	p.CanNotify = !signed
	return p
}
