package client

import (
	"fmt"

	"github.com/dmitrijs2005/machinewatch/internal/common"
)

var (
	ErrUnavailable  = fmt.Errorf("server unavailable: %w", common.ErrBackendUnavailable)
	ErrUnauthorized = fmt.Errorf("server rejected request: %w", common.ErrorUnauthorized)
)
