package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

type SeasonalityMode string

const (
	Additive       SeasonalityMode = "additive"
	Multiplicative SeasonalityMode = "multiplicative"
)

func parseMode(raw string) SeasonalityMode {
	if SeasonalityMode(raw) == Additive {
		return Additive
	}
	return Multiplicative
}

// Model is a fitted seasonal regression for one product.
type Model struct {
	ProductID string
	Samples   int
	TrainedAt time.Time

	mode     SeasonalityMode
	features *featureSpace
	coef     *mat.VecDense
	sigma    float64
	z        float64
	dates    []domain.Date
}

// Fit trains a ridge regression over daily sales. Multiplicative mode fits in
// log1p space so seasonal effects scale with the level.
func Fit(productID string, records []domain.SalesRecord, cal *calendar.Calendar, cfg config.ForecastConfig) (*Model, error) {
	if len(records) < cfg.MinTrainingSamples || len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has %d samples, need %d", domain.ErrModelUnavailable, productID, len(records), cfg.MinTrainingSamples)
	}

	sorted := append([]domain.SalesRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	mode := parseMode(cfg.SeasonalityMode)
	fs := newFeatureSpace(cal, sorted[0].Date, sorted[len(sorted)-1].Date, cfg.WeeklyFourierOrder, cfg.YearlyFourierOrder)

	n, p := len(sorted), fs.width()
	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	dates := make([]domain.Date, n)
	row := make([]float64, p)
	for i, r := range sorted {
		row = fs.row(r.Date, row)
		x.SetRow(i, row)
		y.SetVec(i, toFitSpace(mode, r.Quantity))
		dates[i] = r.Date
	}

	coef, err := solveRidge(x, y, cfg.RidgePenalty)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrModelUnavailable, productID, err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, coef)
	residuals := make([]float64, n)
	for i := range residuals {
		residuals[i] = y.AtVec(i) - fitted.AtVec(i)
	}
	sigma := stat.StdDev(residuals, nil)
	if math.IsNaN(sigma) {
		sigma = 0
	}

	width := cfg.IntervalWidth
	if width <= 0 || width >= 1 {
		width = 0.8
	}

	return &Model{
		ProductID: productID,
		Samples:   n,
		TrainedAt: time.Now(),
		mode:      mode,
		features:  fs,
		coef:      coef,
		sigma:     sigma,
		z:         distuv.UnitNormal.Quantile(0.5 + width/2),
		dates:     dates,
	}, nil
}

// solveRidge solves (XᵀX + λI)β = Xᵀy with the intercept left unpenalised.
func solveRidge(x *mat.Dense, y *mat.VecDense, lambda float64) (*mat.VecDense, error) {
	_, p := x.Dims()

	xtx := mat.NewSymDense(p, nil)
	xtx.SymOuterK(1, x.T())
	if lambda <= 0 {
		lambda = 1e-6
	}
	for i := 0; i < p; i++ {
		penalty := lambda
		if i == 0 {
			penalty = 1e-9
		}
		xtx.SetSym(i, i, xtx.At(i, i)+penalty)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(xtx); !ok {
		return nil, errors.New("normal equations are not positive definite")
	}

	coef := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(coef, &xty); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}
	return coef, nil
}

// LastDate is the final day of training history.
func (m *Model) LastDate() domain.Date {
	return m.dates[len(m.dates)-1]
}

// Residual is the standard deviation of training residuals in fit space.
func (m *Model) Residual() float64 {
	return m.sigma
}

func (m *Model) Features() []string {
	return m.features.names()
}

// Predict continues the history by horizon days.
func (m *Model) Predict(horizon int) []domain.ForecastPoint {
	return m.PredictFrom(m.LastDate().AddDays(1), horizon)
}

// PredictFrom forecasts horizon consecutive days starting at start.
func (m *Model) PredictFrom(start domain.Date, horizon int) []domain.ForecastPoint {
	if horizon <= 0 {
		return []domain.ForecastPoint{}
	}
	dates := make([]domain.Date, horizon)
	for i := range dates {
		dates[i] = start.AddDays(i)
	}
	return m.PredictAt(dates)
}

// Fitted returns in-sample estimates for the training dates.
func (m *Model) Fitted() []domain.ForecastPoint {
	return m.PredictAt(m.dates)
}

func (m *Model) PredictAt(dates []domain.Date) []domain.ForecastPoint {
	out := make([]domain.ForecastPoint, len(dates))
	row := make([]float64, m.features.width())
	band := m.z * m.sigma
	for i, d := range dates {
		row = m.features.row(d, row)
		yhat := mat.Dot(mat.NewVecDense(len(row), row), m.coef)
		out[i] = domain.ForecastPoint{
			Date:      d,
			Predicted: floorZero(fromFitSpace(m.mode, yhat)),
			Lower:     floorZero(fromFitSpace(m.mode, yhat-band)),
			Upper:     floorZero(fromFitSpace(m.mode, yhat+band)),
		}
	}
	return out
}

func toFitSpace(mode SeasonalityMode, v float64) float64 {
	if v < 0 {
		v = 0
	}
	if mode == Multiplicative {
		return math.Log1p(v)
	}
	return v
}

func fromFitSpace(mode SeasonalityMode, v float64) float64 {
	if mode == Multiplicative {
		return math.Expm1(v)
	}
	return v
}

func floorZero(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
