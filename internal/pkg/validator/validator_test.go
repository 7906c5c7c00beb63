package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Title  string `json:"title" validate:"required"`
	RoomID string `json:"room_id" validate:"required,max=36"`
	Note   string `validate:"max=3"`
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	errs := Validate(sample{Note: "toolong"})

	assert.Equal(t, map[string]string{
		"title":   "required",
		"room_id": "required",
		"Note":    "max",
	}, errs)
}

func TestValidate_OK(t *testing.T) {
	assert.Nil(t, Validate(sample{Title: "a", RoomID: "b"}))
}
