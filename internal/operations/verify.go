package operations

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	apperrors "ipedsprep/internal/errors"
	"ipedsprep/internal/exporter"
)

// RoundTripOptions compares floats within a relative tolerance, treats NaN
// as equal to NaN and nil only as equal to nil. Integers and strings must
// match exactly.
func RoundTripOptions(tolerance float64) cmp.Options {
	return cmp.Options{
		cmpopts.EquateApprox(tolerance, 0),
		cmpopts.EquateNaNs(),
	}
}

// VerifyRoundTrip re-reads the artifact at path and compares it row by row
// with want. Any difference, including row count or order, is a
// PersistenceVerificationFailed error carrying the diff.
func VerifyRoundTrip[T any](path string, want []T, tolerance float64) error {
	got, err := exporter.ReadTable[T](path)
	if err != nil {
		return apperrors.NewVerificationError(path, err.Error())
	}
	if len(got) == 0 && len(want) == 0 {
		return nil
	}
	if diff := cmp.Diff(want, got, RoundTripOptions(tolerance)); diff != "" {
		return apperrors.NewVerificationError(path, diff)
	}
	return nil
}
