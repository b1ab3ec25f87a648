package market

import "errors"

var ErrZeroPublicationDate = errors.New("publication date is required")
var ErrNonFiniteAmount = errors.New("amount must be a finite number")
