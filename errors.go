package phrasebook

import "errors"

var (
	ErrResourceNotFound = errors.New("phrasebook: resource not found")
	ErrSourceUnreadable = errors.New("phrasebook: source unreadable")
)
