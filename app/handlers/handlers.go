// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"github.com/go-playground/validator/v10"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "eqfield":
		return err.Field() + " must match " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "whatsapp_format":
		return "WhatsApp number must be in format 08xxxxxxxxxx or 628xxxxxxxxxx"
	case "username_format":
		return "Username may only contain lowercase letters, numbers, hyphens and underscores"
	default:
		return err.Field() + " is invalid"
	}
}
