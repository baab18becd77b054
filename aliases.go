package annidx

import (
	"github.com/Snider/annidx/errs"
	"github.com/Snider/annidx/vector"
)

// The primitive data model (Vector/Point/Dataset), distance metrics, result
// sets, and the shared search heap live in the vector subpackage so that the
// internal/* algorithm packages can import them without creating a cycle
// back through this facade package. Everything below re-exports the public
// surface under the annidx name so callers only ever import one package.

type (
	Vector              = vector.Vector
	Point[T any]        = vector.Point[T]
	Dataset[T any]       = vector.Dataset[T]
	Metric              = vector.Metric
	AdditiveMetric      = vector.AdditiveMetric
	ResultSet           = vector.ResultSet
	KNNResultSet        = vector.KNNResultSet
	RadiusResultSet     = vector.RadiusResultSet
	CenterInit          = vector.CenterInit
)

const (
	CenterRandom   = vector.CenterRandom
	CenterGonzales = vector.CenterGonzales
	CenterKMeansPP = vector.CenterKMeansPP
)

// NewDataset builds a Dataset from rows/values of equal length and uniform
// dimensionality (see vector.NewDataset for the validation it performs).
func NewDataset[T any](rows []Vector, values []T) (*Dataset[T], error) {
	return vector.NewDataset[T](rows, values)
}

var (
	NewKNNResultSet    = vector.NewKNNResultSet
	NewRadiusResultSet = vector.NewRadiusResultSet
	IsZero             = vector.IsZero
)

type (
	L2Distance             = vector.L2Distance
	L1Distance             = vector.L1Distance
	MinkowskiDistance      = vector.MinkowskiDistance
	HammingDistance        = vector.HammingDistance
	HellingerDistance      = vector.HellingerDistance
	ChiSquaredDistance     = vector.ChiSquaredDistance
	KLDivergence           = vector.KLDivergence
)

var (
	ErrInvalidInput      = errs.ErrInvalidInput
	ErrUnsupportedMetric = errs.ErrUnsupportedMetric
	ErrSerialization     = errs.ErrSerialization
	ErrResourceExhausted = errs.ErrResourceExhausted
	ErrInternalInvariant = errs.ErrInternalInvariant
)

// errorf wraps a sentinel with call-site context, preserving errors.Is.
func errorf(sentinel error, format string, args ...any) error {
	return errs.Wrap(sentinel, format, args...)
}
