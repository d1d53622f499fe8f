package domain

import "errors"

var (
	ErrQuoteNotFound = errors.New("quote not found")
	ErrOfferNotFound = errors.New("quote offer not found")
)
