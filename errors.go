package main

import "errors"

// ErrNotFound is returned when no record exists for a slug.
var ErrNotFound = errors.New("record not found")

// ErrSlugExhausted is returned when the allocator could not find a free slug
// within its attempt budget.
var ErrSlugExhausted = errors.New("could not allocate a unique slug")

// ErrInvalidURL is returned when a link target does not parse as an absolute URL.
var ErrInvalidURL = errors.New("invalid url")

// ErrInvalidInput is returned when a request payload fails validation.
var ErrInvalidInput = errors.New("invalid input")
