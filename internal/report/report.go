// Package report renders a StoredState as a summary PDF, a division
// agreement PDF, or a Markdown summary for the terminal.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mmynk/assetsplitter/internal/models"
)

// Kind selects a report layout.
type Kind string

const (
	KindSummary   Kind = "summary"
	KindAgreement Kind = "agreement"
)

var ErrUnknownKind = errors.New("unknown report kind")

// ParseKind accepts "summary" or "agreement".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSummary, KindAgreement:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Filename is the suggested download name for a report.
func (k Kind) Filename() string {
	if k == KindAgreement {
		return "asset-division-agreement.pdf"
	}
	return "asset-division-summary.pdf"
}

type options struct {
	now      time.Time
	compress bool
}

// Option configures PDF generation.
type Option func(*options)

// At stamps the report with t instead of the current time.
func At(t time.Time) Option {
	return func(o *options) { o.now = t }
}

// Uncompressed leaves page streams readable, which is handy for inspection.
func Uncompressed() Option {
	return func(o *options) { o.compress = false }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now(), compress: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write renders the report of the given kind to w.
func Write(w io.Writer, kind Kind, state models.StoredState, opts ...Option) error {
	switch kind {
	case KindSummary:
		return SummaryPDF(w, state, opts...)
	case KindAgreement:
		return AgreementPDF(w, state, opts...)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// AllocationLabel describes how an asset is divided: "60% / 40%" for a split,
// "<name> Takes" when one party receives it whole.
func AllocationLabel(state models.StoredState, a models.Asset) string {
	switch a.AllocationType {
	case models.AllocationPartyA:
		return state.DisplayName(models.PartyA) + " Takes"
	case models.AllocationPartyB:
		return state.DisplayName(models.PartyB) + " Takes"
	default:
		return formatPercent(a.PartyAPercentage) + " / " + formatPercent(a.PartyBPercentage)
	}
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
