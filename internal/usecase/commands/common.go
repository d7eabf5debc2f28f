package commands

import "aurelia-commerce/internal/pkg/errs"

var ErrDatabaseOperationFailed = errs.New("database operation failed")
