package utils

import "errors"

var ErrAdminNotFound = errors.New("authentication required: admin subject not found")
