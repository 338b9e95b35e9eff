package repo

import "gorm.io/gorm"

// ErrNotFound is returned when a row addressed by key does not exist.
var ErrNotFound = gorm.ErrRecordNotFound
