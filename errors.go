package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotExist   = errors.New("doesn't exist")
	ErrExists     = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

var badNameRegex = regexp.MustCompile(`[<>:"/\\|?\*\s]`)

func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: table name cannot be blank", ErrValidation)
	}

	m := badNameRegex.FindAllString(name, -1)

	if len(m) > 0 {
		return fmt.Errorf("%w: table name contains disallowed characters %q", ErrValidation, strings.Join(m, ""))
	}

	return nil
}
