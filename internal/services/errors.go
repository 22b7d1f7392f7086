package services

import "errors"

// Common service errors
var (
	ErrNotFound           = errors.New("enregistrement introuvable")
	ErrInvalidCredentials = errors.New("identifiants invalides")
	ErrUnauthorized       = errors.New("non autorisé")
	ErrAccountDisabled    = errors.New("ce compte est désactivé")
	ErrActiveEntryExists  = errors.New("un pointage est déjà en cours")
	ErrNoActiveEntry      = errors.New("aucun pointage en cours")
	ErrEndBeforeStart     = errors.New("l'heure de fin doit être postérieure à l'heure de début")
	ErrClientHasProjects  = errors.New("impossible de supprimer un client lié à des projets")
	ErrInvalidQRCode      = errors.New("QR code invalide ou expiré")
	ErrDuplicate          = errors.New("enregistrement dupliqué")
)
