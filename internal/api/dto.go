package api

import (
	"github.com/starford/notesman/internal/ledger"
	"github.com/starford/notesman/internal/ledgerservice"
)

// StatusResponse is returned by GET /api/ledger.
type StatusResponse = ledgerservice.StatusDetail

// DocumentResponse is returned by GET /api/ledger/{kind}.
type DocumentResponse = ledgerservice.Document

// PreviewResponse is returned by GET /api/preview.
type PreviewResponse = ledgerservice.Preview

// ProcessResponse is returned by POST /api/process.
type ProcessResponse = ledger.Report
