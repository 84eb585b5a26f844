package models

import "errors"

// Erreurs métier partagées entre les stores, les services et les handlers.
// Les handlers les traduisent en codes HTTP (voir internal/handlers).
var (
	ErrNotFound        = errors.New("ressource introuvable")
	ErrOutOfStock      = errors.New("produit en rupture de stock")
	ErrValidation      = errors.New("données invalides")
	ErrExternalService = errors.New("service externe indisponible")
	ErrConflict        = errors.New("transition d'état perdue")
)
