package domain

import "errors"

// Hero errors
var (
	ErrHeroNotFound    = errors.New("hero not found")
	ErrInvalidHeroName = errors.New("hero name must not be blank")
	ErrInvalidHeroID   = errors.New("invalid hero id")
)
