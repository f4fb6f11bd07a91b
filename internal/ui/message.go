package ui

import (
	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/records"
)

// recordsLoadedMsg reports the end of a reload. The records themselves live in the book.
type recordsLoadedMsg struct {
	err error
}

type recordAddedMsg struct {
	measurement models.Measurement
	result      *records.AppendResult
	err         error
}

type signedInMsg struct {
	err error
}

type signedOutMsg struct {
	err error
}

type profileMsg struct {
	profile *models.Profile
	err     error
}
