package entities

import "errors"

// API-visible sentinel errors. The messages are user-facing and intentionally
// match the strings integrators already depend on.
var (
	ErrEmailRegistered = errors.New("El email ya está registrado")
	ErrPhoneRegistered = errors.New("El teléfono ya está registrado")

	ErrUserNotFound    = errors.New("Usuario no encontrado")
	ErrInvalidPassword = errors.New("Contraseña incorrecta")

	// ErrInstanceNotFound marks a provider 404 for an instanceName.
	ErrInstanceNotFound = errors.New("instance not found")
)
