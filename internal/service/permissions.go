package service

import "github.com/dtroode/pactpal-server/internal/model"

// Permissions computes what caller may do with a.
func Permissions(caller model.Caller, a model.Agreement) model.Permissions {
	isAdmin := caller.IsAdmin()
	p := model.Permissions{
		IsCreator:   caller.Authenticated() && a.CreatorID == caller.ID,
		IsRecipient: caller.Authenticated() && a.RecipientID != "" && a.RecipientID == caller.ID,
	}
	p.HasRequestedDelete = caller.Authenticated() && a.HasDeleteRequestFrom(caller.ID)

	unbound := a.Status == model.StatusPending && a.RecipientID == ""
	p.CanView = isAdmin || p.IsCreator || p.IsRecipient || unbound

	p.CanRespond = caller.Authenticated() &&
		a.Status == model.StatusPending &&
		(!p.IsCreator || isAdmin) &&
		(a.RecipientID == "" || p.IsRecipient || isAdmin)

	p.CanDelete = isAdmin ||
		(a.Status == model.StatusAccepted && (p.IsCreator || p.IsRecipient) && !p.HasRequestedDelete) ||
		(a.Status == model.StatusPending && p.IsCreator)

	return p
}
